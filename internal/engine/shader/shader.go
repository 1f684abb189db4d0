// Package shader compiles GLSL programs and uploads their uniforms.
package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// ErrCompile is returned when a stage fails to compile or the program fails to link.
var ErrCompile = errors.New("shader compilation failed")

// Shader is a linked vertex+fragment program.
//
// New and Delete block until the GL thread has done the work. Bind and the
// Upload methods issue GL calls directly and must run on the GL thread.
type Shader struct {
	ctx      *gpu.Context
	lib      *Library
	vertName string
	fragName string

	program   uint32
	locations map[string]int32
}

// New compiles the named vertex and fragment shaders from the default library.
func New(ctx *gpu.Context, vertName, fragName string) (*Shader, error) {
	return NewFromLibrary(ctx, defaultLibrary, vertName, fragName)
}

// NewFromLibrary compiles the named shaders from lib.
func NewFromLibrary(ctx *gpu.Context, lib *Library, vertName, fragName string) (*Shader, error) {
	s := &Shader{
		ctx:       ctx,
		lib:       lib,
		vertName:  vertName,
		fragName:  fragName,
		locations: make(map[string]int32),
	}

	vertSrc := lib.Read(vertName)
	fragSrc := lib.Read(fragName)

	var err error
	ctx.Run(func(gl gpu.GL) {
		s.program, err = compileProgram(gl, vertSrc, fragSrc)
	})
	if err != nil {
		logger.Named("shader").Error("compiling shader",
			zap.String("vertex", vertName),
			zap.String("fragment", fragName),
			zap.Error(err))
		return nil, fmt.Errorf("compiling %s/%s: %w", vertName, fragName, err)
	}

	ctx.Ref()
	logger.Named("shader").Debug("shader compiled",
		zap.String("vertex", vertName),
		zap.String("fragment", fragName),
		zap.Uint32("program", s.program))
	return s, nil
}

// compileProgram compiles both stages and links them into a program.
func compileProgram(gl gpu.GL, vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileStage(gl, vertexSrc, gpu.VertexShader, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileStage(gl, fragmentSrc, gpu.FragmentShader, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	if ok, log := gl.LinkProgram(program); !ok {
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link: %s", ErrCompile, log)
	}
	return program, nil
}

func compileStage(gl gpu.GL, source string, kind uint32, name string) (uint32, error) {
	sh := gl.CreateShader(kind)
	if ok, log := gl.CompileShader(sh, source); !ok {
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("%w: %s shader: %s", ErrCompile, name, log)
	}
	return sh, nil
}

// Program returns the GL program name, 0 after Delete.
func (s *Shader) Program() uint32 {
	return s.program
}

// Names returns the vertex and fragment shader names the program was built from.
func (s *Shader) Names() (vert, frag string) {
	return s.vertName, s.fragName
}

// Bind activates the program for subsequent draw calls.
func (s *Shader) Bind() {
	s.ctx.GL().UseProgram(s.program)
}

func (s *Shader) location(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.ctx.GL().GetUniformLocation(s.program, name)
	s.locations[name] = loc
	return loc
}

// UploadMatrix sets a mat4 uniform. Unknown or optimized-out uniforms are skipped.
func (s *Shader) UploadMatrix(m math.Mat4, name string) {
	if loc := s.location(name); loc >= 0 {
		s.ctx.GL().UniformMatrix4fv(loc, m)
	}
}

// UploadVec2 sets a vec2 uniform.
func (s *Shader) UploadVec2(v math.Vec2, name string) {
	if loc := s.location(name); loc >= 0 {
		s.ctx.GL().Uniform2f(loc, v.X, v.Y)
	}
}

// UploadInt sets an int or sampler uniform.
func (s *Shader) UploadInt(v int32, name string) {
	if loc := s.location(name); loc >= 0 {
		s.ctx.GL().Uniform1i(loc, v)
	}
}

// UploadFloat sets a float uniform.
func (s *Shader) UploadFloat(v float32, name string) {
	if loc := s.location(name); loc >= 0 {
		s.ctx.GL().Uniform1f(loc, v)
	}
}

// AttribLocation returns the location of a vertex attribute, -1 if unused.
func (s *Shader) AttribLocation(name string) int32 {
	return s.ctx.GL().GetAttribLocation(s.program, name)
}

// Reload recompiles the program from its library. On failure the previous
// program stays active. Must run on the GL thread.
func (s *Shader) Reload(gl gpu.GL) error {
	program, err := compileProgram(gl, s.lib.Read(s.vertName), s.lib.Read(s.fragName))
	if err != nil {
		logger.Named("shader").Error("reloading shader",
			zap.String("vertex", s.vertName),
			zap.String("fragment", s.fragName),
			zap.Error(err))
		return err
	}
	gl.DeleteProgram(s.program)
	s.program = program
	clear(s.locations)
	logger.Named("shader").Info("shader reloaded",
		zap.String("vertex", s.vertName),
		zap.String("fragment", s.fragName))
	return nil
}

// Delete releases the program. This is a blocking call: it returns once the
// GL thread has deleted the program. Deleting twice is a no-op.
func (s *Shader) Delete() {
	if s.program == 0 {
		return
	}
	program := s.program
	s.ctx.Run(func(gl gpu.GL) {
		gl.DeleteProgram(program)
	})
	s.program = 0
	s.ctx.Unref()
}
