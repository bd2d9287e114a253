package shader

// Names the host binds against the god rays program.
const (
	PositionAttribute = "a_position"
	ResolutionUniform = "iResolution"
	TimeUniform       = "iTime"
)

// Source is an immutable vertex/fragment pair.
type Source struct {
	Vertex   string
	Fragment string
}

// ──────────────────────────────── GLSL ES 3.00 ─────────────────────────────────

const vertexShaderSource = `#version 300 es
layout (location = 0) in vec4 a_position;
void main() {
    gl_Position = a_position;
}
`

const fragmentShaderSource = `#version 300 es
precision mediump float;

uniform float iTime;
uniform vec2  iResolution;

out vec4 fragColor;

float rayStrength(vec2 raySource, vec2 rayRefDirection, vec2 coord, float seedA, float seedB, float speed) {
    vec2 sourceToCoord = coord - raySource;
    float cosAngle = dot(normalize(sourceToCoord), rayRefDirection);

    return clamp(
        (0.45 + 0.15 * sin(cosAngle * seedA + iTime * speed)) +
        (0.3 + 0.2 * cos(-cosAngle * seedB + iTime * speed)),
        0.0, 1.0) *
        clamp((iResolution.x - length(sourceToCoord)) / iResolution.x, 0.5, 1.0);
}

void main() {
    vec2 fragCoord = gl_FragCoord.xy;
    vec2 coord = vec2(fragCoord.x, iResolution.y - fragCoord.y);

    vec2 rayPos1 = vec2(iResolution.x * 0.5, iResolution.y * -0.4);
    vec2 rayRefDir1 = normalize(vec2(1.0, -0.116));
    const float raySeedA1 = 36.2214;
    const float raySeedB1 = 21.11349;
    const float raySpeed1 = 1.5;

    vec2 rayPos2 = vec2(iResolution.x * 0.5, iResolution.y * -0.6);
    vec2 rayRefDir2 = normalize(vec2(1.0, 0.241));
    const float raySeedA2 = 22.39910;
    const float raySeedB2 = 18.0234;
    const float raySpeed2 = 1.1;

    vec4 rays1 = vec4(1.0) * rayStrength(rayPos1, rayRefDir1, coord, raySeedA1, raySeedB1, raySpeed1);
    vec4 rays2 = vec4(1.0) * rayStrength(rayPos2, rayRefDir2, coord, raySeedA2, raySeedB2, raySpeed2);

    fragColor = rays1 * 0.5 + rays2 * 0.4;

    // darker with depth, blue-green tint
    float brightness = 1.0 - (coord.y / iResolution.y);
    fragColor.x *= 0.1 + (brightness * 0.8);
    fragColor.y *= 0.3 + (brightness * 0.6);
    fragColor.z *= 0.5 + (brightness * 0.5);
}
`

// GodRays returns the shader pair for the effect.
func GodRays() Source {
	return Source{
		Vertex:   vertexShaderSource,
		Fragment: fragmentShaderSource,
	}
}
