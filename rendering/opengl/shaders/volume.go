package shaders

// Uniform names shared by the renderer.
const (
	UniformMVP           = "mvp"
	UniformVolume        = "volume"
	UniformTransfer      = "transfer"
	UniformTransferScale = "transferScale"
	UniformColor         = "color"
)

// Texture units used by the volume program.
const (
	BlockTextureUnit    = 0
	TransferTextureUnit = 1
)

// Slice quads are unit quads centered on the block origin, so the texture
// coordinate is the object space position shifted into [0,1].
const volumeVertexShader = `
#version 410 core

layout(location = 0) in vec4 vertex;

uniform mat4 mvp;

out vec3 texCoord;

void main() {
    texCoord = vertex.xyz + 0.5;
    gl_Position = mvp * vertex;
}
`

const volumeFragmentShader = `
#version 410 core

in vec3 texCoord;
out vec4 outColor;

uniform sampler3D volume;
uniform sampler1D transfer;
uniform float transferScale;

void main() {
    float scalar = texture(volume, texCoord).r;
    vec4 color = texture(transfer, scalar);
    color.a *= transferScale;
    if (color.a <= 0.0) {
        discard;
    }
    outColor = color;
}
`

const wireframeVertexShader = `
#version 410 core

layout(location = 0) in vec4 vertex;

uniform mat4 mvp;

void main() {
    gl_Position = mvp * vertex;
}
`

const wireframeFragmentShader = `
#version 410 core

uniform vec4 color;
out vec4 outColor;

void main() {
    outColor = color;
}
`

// CompileVolumeProgram builds the program that samples a block's 3D texture
// through the transfer function.
func CompileVolumeProgram() (*Program, error) {
	return NewProgram("volume", volumeVertexShader, volumeFragmentShader,
		UniformMVP, UniformVolume, UniformTransfer, UniformTransferScale)
}

// CompileWireframeProgram builds the flat color program used for bounding
// boxes.
func CompileWireframeProgram() (*Program, error) {
	return NewProgram("wireframe", wireframeVertexShader, wireframeFragmentShader,
		UniformMVP, UniformColor)
}
