// Package gpu holds the OpenGL function table used by the VR renderer and
// the long-lived context that proxies work onto the GL thread.
package gpu

// OpenGL enum values used by the renderer. They mirror the GL headers so the
// packages above gpu never import the cgo bindings directly.
const (
	Points        uint32 = 0x0000
	Lines         uint32 = 0x0001
	LineLoop      uint32 = 0x0002
	LineStrip     uint32 = 0x0003
	Triangles     uint32 = 0x0004
	TriangleStrip uint32 = 0x0005
	TriangleFan   uint32 = 0x0006

	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893

	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30

	Texture2D        uint32 = 0x0DE1
	Texture0         uint32 = 0x84C0
	RGBA             uint32 = 0x1908
	RGBA8            int32  = 0x8058
	TextureMinFilter uint32 = 0x2801
	TextureMagFilter uint32 = 0x2800
	TextureWrapS     uint32 = 0x2802
	TextureWrapT     uint32 = 0x2803
	Linear           int32  = 0x2601
	ClampToEdge      int32  = 0x812F
	Repeat           int32  = 0x2901

	Framebuffer         uint32 = 0x8D40
	Renderbuffer        uint32 = 0x8D41
	ColorAttachment0    uint32 = 0x8CE0
	DepthAttachment     uint32 = 0x8D00
	DepthComponent24    uint32 = 0x81A6
	FramebufferComplete uint32 = 0x8CD5

	ColorBufferBit uint32 = 0x4000
	DepthBufferBit uint32 = 0x0100

	DepthTest        uint32 = 0x0B71
	CullFace         uint32 = 0x0B44
	Blend            uint32 = 0x0BE2
	ProgramPointSize uint32 = 0x8642
)

// GL is the subset of the OpenGL 4.1 core function table the renderer calls.
// Every method must be invoked on the thread owning the context.
type GL interface {
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferFloat32(target uint32, data []float32)
	BufferUint32(target uint32, data []uint32)
	DeleteBuffer(buffer uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32)
	DrawElements(mode uint32, count int32)
	DrawArrays(mode uint32, first, count int32)

	CreateShader(kind uint32) uint32
	CompileShader(shader uint32, source string) (ok bool, infoLog string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32) (ok bool, infoLog string)
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	GetUniformLocation(program uint32, name string) int32
	GetAttribLocation(program uint32, name string) int32
	UniformMatrix4fv(location int32, m [16]float32)
	Uniform2f(location int32, x, y float32)
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, internalFormat, width, height int32, format uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	DeleteTexture(texture uint32)

	GenFramebuffer() uint32
	BindFramebuffer(target, fbo uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32)
	CheckFramebufferStatus(target uint32) uint32
	CurrentFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	GenRenderbuffer() uint32
	BindRenderbuffer(target, rbo uint32)
	RenderbufferStorage(target, format uint32, width, height int32)
	FramebufferRenderbuffer(target, attachment, rbTarget, rbo uint32)
	DeleteRenderbuffer(rbo uint32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(capability uint32)
	Disable(capability uint32)
	ReadPixels(x, y, width, height int32, pixels []byte)
}
