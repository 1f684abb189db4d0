// Package gputest provides an in-memory gpu.GL that records calls, so
// meshes, shaders and renderers can be tested without a GPU.
package gputest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
)

// Object kinds tracked by the recorder.
const (
	KindVertexArray  = "vao"
	KindBuffer       = "buffer"
	KindShader       = "shader"
	KindProgram      = "program"
	KindTexture      = "texture"
	KindFramebuffer  = "framebuffer"
	KindRenderbuffer = "renderbuffer"
)

// Call is one recorded GL call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Draw is a recorded draw call together with the state it was issued in.
type Draw struct {
	Mode        uint32
	Count       int32
	Program     uint32
	VertexArray uint32
	Framebuffer uint32
	Textures    map[uint32]uint32
}

// Recorder implements gpu.GL. It is safe for use from several goroutines.
type Recorder struct {
	mu sync.Mutex

	// FailCompile makes every shader compilation fail.
	FailCompile bool
	// Incomplete makes CheckFramebufferStatus report an incomplete framebuffer.
	Incomplete bool

	nextID      uint32
	calls       []Call
	live        map[string]map[uint32]bool
	doubleFrees []string

	program     uint32
	vao         uint32
	fbo         uint32
	activeUnit  uint32
	textures    map[uint32]uint32
	uniformLocs map[uint32]map[string]int32
	uniforms    map[uint32]map[string]any
	draws       []Draw
	viewports   [][4]int32
	bufferData  map[uint32]any
	bound       map[uint32]uint32
}

var _ gpu.GL = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		live:        make(map[string]map[uint32]bool),
		textures:    make(map[uint32]uint32),
		uniformLocs: make(map[uint32]map[string]int32),
		uniforms:    make(map[uint32]map[string]any),
		bufferData:  make(map[uint32]any),
		bound:       make(map[uint32]uint32),
	}
}

func (r *Recorder) record(name string, args ...any) {
	r.calls = append(r.calls, Call{Name: name, Args: args})
}

func (r *Recorder) gen(kind string) uint32 {
	r.nextID++
	if r.live[kind] == nil {
		r.live[kind] = make(map[uint32]bool)
	}
	r.live[kind][r.nextID] = true
	return r.nextID
}

func (r *Recorder) release(kind string, id uint32) {
	if id == 0 {
		return
	}
	if !r.live[kind][id] {
		r.doubleFrees = append(r.doubleFrees, fmt.Sprintf("%s %d", kind, id))
		return
	}
	delete(r.live[kind], id)
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallNames returns the names of the recorded calls in order.
func (r *Recorder) CallNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many times the named call was recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Live returns the number of objects of kind that were created and not deleted.
func (r *Recorder) Live(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live[kind])
}

// IsLive reports whether the object exists.
func (r *Recorder) IsLive(kind string, id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live[kind][id]
}

// DoubleFrees lists objects deleted more than once or never created.
func (r *Recorder) DoubleFrees() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.doubleFrees...)
}

// Draws returns the recorded draw calls.
func (r *Recorder) Draws() []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draw(nil), r.draws...)
}

// Viewports returns every viewport set, in order.
func (r *Recorder) Viewports() [][4]int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][4]int32(nil), r.viewports...)
}

// Uniform returns the last value uploaded to the named uniform of program.
func (r *Recorder) Uniform(program uint32, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.uniforms[program][name]
	return v, ok
}

// BufferData returns the data last uploaded to buffer.
func (r *Recorder) BufferData(buffer uint32) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bufferData[buffer]
}

// Reset forgets recorded calls and draws but keeps object state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.draws = nil
	r.viewports = nil
}

// Dump formats the call log, one call per line.
func (r *Recorder) Dump() string {
	var b strings.Builder
	for _, c := range r.Calls() {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Recorder) GenVertexArray() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindVertexArray)
	r.record("GenVertexArray", id)
	return id
}

func (r *Recorder) BindVertexArray(vao uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vao = vao
	r.record("BindVertexArray", vao)
}

func (r *Recorder) DeleteVertexArray(vao uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindVertexArray, vao)
	r.record("DeleteVertexArray", vao)
}

func (r *Recorder) GenBuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindBuffer)
	r.record("GenBuffer", id)
	return id
}

func (r *Recorder) BindBuffer(target, buffer uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound[target] = buffer
	r.record("BindBuffer", target, buffer)
}

func (r *Recorder) BufferFloat32(target uint32, data []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bufferData[r.bound[target]] = append([]float32(nil), data...)
	r.record("BufferFloat32", target, len(data))
}

func (r *Recorder) BufferUint32(target uint32, data []uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bufferData[r.bound[target]] = append([]uint32(nil), data...)
	r.record("BufferUint32", target, len(data))
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindBuffer, buffer)
	r.record("DeleteBuffer", buffer)
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("EnableVertexAttribArray", index)
}

func (r *Recorder) VertexAttribPointer(index uint32, size int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("VertexAttribPointer", index, size)
}

func (r *Recorder) draw(mode uint32, count int32) {
	tex := make(map[uint32]uint32, len(r.textures))
	for k, v := range r.textures {
		tex[k] = v
	}
	r.draws = append(r.draws, Draw{
		Mode:        mode,
		Count:       count,
		Program:     r.program,
		VertexArray: r.vao,
		Framebuffer: r.fbo,
		Textures:    tex,
	})
}

func (r *Recorder) DrawElements(mode uint32, count int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw(mode, count)
	r.record("DrawElements", mode, count)
}

func (r *Recorder) DrawArrays(mode uint32, first, count int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draw(mode, count)
	r.record("DrawArrays", mode, first, count)
}

func (r *Recorder) CreateShader(kind uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindShader)
	r.record("CreateShader", kind, id)
	return id
}

func (r *Recorder) CompileShader(shader uint32, source string) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CompileShader", shader)
	if r.FailCompile || strings.TrimSpace(source) == "" {
		return false, "0:1(1): error: syntax error"
	}
	return true, ""
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindShader, shader)
	r.record("DeleteShader", shader)
}

func (r *Recorder) CreateProgram() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindProgram)
	r.uniformLocs[id] = make(map[string]int32)
	r.uniforms[id] = make(map[string]any)
	r.record("CreateProgram", id)
	return id
}

func (r *Recorder) AttachShader(program, shader uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("AttachShader", program, shader)
}

func (r *Recorder) LinkProgram(program uint32) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("LinkProgram", program)
	return true, ""
}

func (r *Recorder) UseProgram(program uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = program
	r.record("UseProgram", program)
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindProgram, program)
	r.record("DeleteProgram", program)
}

func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	locs := r.uniformLocs[program]
	if locs == nil {
		return -1
	}
	loc, ok := locs[name]
	if !ok {
		loc = int32(len(locs))
		locs[name] = loc
	}
	return loc
}

func (r *Recorder) GetAttribLocation(program uint32, name string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch name {
	case "position":
		return 0
	case "uv":
		return 1
	case "color":
		return 2
	}
	return -1
}

func (r *Recorder) setUniform(location int32, v any) {
	for name, loc := range r.uniformLocs[r.program] {
		if loc == location {
			r.uniforms[r.program][name] = v
			return
		}
	}
}

func (r *Recorder) UniformMatrix4fv(location int32, m [16]float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform(location, m)
	r.record("UniformMatrix4fv", location)
}

func (r *Recorder) Uniform2f(location int32, x, y float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform(location, [2]float32{x, y})
	r.record("Uniform2f", location, x, y)
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform(location, v)
	r.record("Uniform1i", location, v)
}

func (r *Recorder) Uniform1f(location int32, v float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setUniform(location, v)
	r.record("Uniform1f", location, v)
}

func (r *Recorder) GenTexture() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindTexture)
	r.record("GenTexture", id)
	return id
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeUnit = unit - gpu.Texture0
	r.record("ActiveTexture", unit)
}

func (r *Recorder) BindTexture(target, texture uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textures[r.activeUnit] = texture
	r.record("BindTexture", target, texture)
}

func (r *Recorder) TexImage2D(target uint32, internalFormat, width, height int32, format uint32, pixels []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexImage2D", width, height, len(pixels))
}

func (r *Recorder) TexParameteri(target, pname uint32, param int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("TexParameteri", pname, param)
}

func (r *Recorder) DeleteTexture(texture uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindTexture, texture)
	r.record("DeleteTexture", texture)
}

func (r *Recorder) GenFramebuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindFramebuffer)
	r.record("GenFramebuffer", id)
	return id
}

func (r *Recorder) BindFramebuffer(target, fbo uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fbo = fbo
	r.record("BindFramebuffer", fbo)
}

func (r *Recorder) FramebufferTexture2D(target, attachment, texTarget, texture uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FramebufferTexture2D", attachment, texture)
}

func (r *Recorder) CheckFramebufferStatus(target uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("CheckFramebufferStatus", r.fbo)
	if r.Incomplete {
		return 0x8CD6
	}
	return gpu.FramebufferComplete
}

func (r *Recorder) CurrentFramebuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fbo
}

func (r *Recorder) DeleteFramebuffer(fbo uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindFramebuffer, fbo)
	r.record("DeleteFramebuffer", fbo)
}

func (r *Recorder) GenRenderbuffer() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.gen(KindRenderbuffer)
	r.record("GenRenderbuffer", id)
	return id
}

func (r *Recorder) BindRenderbuffer(target, rbo uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("BindRenderbuffer", rbo)
}

func (r *Recorder) RenderbufferStorage(target, format uint32, width, height int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("RenderbufferStorage", width, height)
}

func (r *Recorder) FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("FramebufferRenderbuffer", attachment, rbo)
}

func (r *Recorder) DeleteRenderbuffer(rbo uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(KindRenderbuffer, rbo)
	r.record("DeleteRenderbuffer", rbo)
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewports = append(r.viewports, [4]int32{x, y, width, height})
	r.record("Viewport", x, y, width, height)
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ClearColor", red, green, blue, alpha)
}

func (r *Recorder) Clear(mask uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Clear", r.fbo, mask)
}

func (r *Recorder) Enable(capability uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Enable", capability)
}

func (r *Recorder) Disable(capability uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("Disable", capability)
}

func (r *Recorder) ReadPixels(x, y, width, height int32, pixels []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("ReadPixels", x, y, width, height)
}
