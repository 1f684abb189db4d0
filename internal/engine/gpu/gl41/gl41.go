// Package gl41 implements gpu.GL on top of the go-gl OpenGL 4.1 core bindings.
package gl41

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
)

// GL forwards every call to the current OpenGL context.
type GL struct{}

var _ gpu.GL = GL{}

// Init loads the OpenGL function pointers. It must run on the thread the
// context is current on, after the context was created.
func Init() (GL, error) {
	if err := gl.Init(); err != nil {
		return GL{}, fmt.Errorf("gl.Init: %w", err)
	}
	return GL{}, nil
}

// Version returns the driver's GL version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (GL) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (GL) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (GL) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (GL) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (GL) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

func (GL) BufferFloat32(target uint32, data []float32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (GL) BufferUint32(target uint32, data []uint32) {
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(target, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (GL) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (GL) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

// VertexAttribPointer describes a tightly packed float attribute in the
// currently bound array buffer.
func (GL) VertexAttribPointer(index uint32, size int32) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, 0, 0)
}

func (GL) DrawElements(mode uint32, count int32) {
	gl.DrawElements(mode, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (GL) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (GL) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }

func (GL) CompileShader(shader uint32, source string) (bool, string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		return false, infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
	}
	return true, ""
}

func (GL) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (GL) CreateProgram() uint32 { return gl.CreateProgram() }

func (GL) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (GL) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		return false, infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
	}
	return true, ""
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	read(&buf[0])
	return gl.GoStr(&buf[0])
}

func (GL) UseProgram(program uint32) { gl.UseProgram(program) }

func (GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (GL) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (GL) UniformMatrix4fv(location int32, m [16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (GL) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (GL) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

func (GL) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (GL) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (GL) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

func (GL) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

func (GL) TexImage2D(target uint32, internalFormat, width, height int32, format uint32, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, gl.UNSIGNED_BYTE, nil)
		return
	}
	gl.TexImage2D(target, 0, internalFormat, width, height, 0, format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (GL) TexParameteri(target, pname uint32, param int32) { gl.TexParameteri(target, pname, param) }

func (GL) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

func (GL) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (GL) BindFramebuffer(target, fbo uint32) { gl.BindFramebuffer(target, fbo) }

func (GL) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, 0)
}

func (GL) CheckFramebufferStatus(target uint32) uint32 { return gl.CheckFramebufferStatus(target) }

func (GL) CurrentFramebuffer() uint32 {
	var fbo int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &fbo)
	return uint32(fbo)
}

func (GL) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }

func (GL) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (GL) BindRenderbuffer(target, rbo uint32) { gl.BindRenderbuffer(target, rbo) }

func (GL) RenderbufferStorage(target, format uint32, width, height int32) {
	gl.RenderbufferStorage(target, format, width, height)
}

func (GL) FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbTarget, rbo)
}

func (GL) DeleteRenderbuffer(rbo uint32) { gl.DeleteRenderbuffers(1, &rbo) }

func (GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (GL) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (GL) Clear(mask uint32) { gl.Clear(mask) }

func (GL) Enable(capability uint32) { gl.Enable(capability) }

func (GL) Disable(capability uint32) { gl.Disable(capability) }

func (GL) ReadPixels(x, y, width, height int32, pixels []byte) {
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}
