// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/julia/formula"
	"github.com/gogpu/julia/palette"
)

// Shader entry point shared by the compute and paint modules.
const entryPoint = "main"

// workgroupSize is the edge of the square compute workgroup.
const workgroupSize = 8

// complexLib implements every formula operation on vec2<f32> values
// holding (re, im).
const complexLib = `
const C_ONE = vec2<f32>(1.0, 0.0);

fn c_plus(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> { return a + b; }
fn c_minus(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> { return a - b; }

fn c_mul(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> {
    return vec2<f32>(a.x * b.x - a.y * b.y, a.x * b.y + a.y * b.x);
}

fn c_div(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> {
    let d = dot(b, b);
    return vec2<f32>(a.x * b.x + a.y * b.y, a.y * b.x - a.x * b.y) / d;
}

fn c_re(a: vec2<f32>) -> vec2<f32> { return vec2<f32>(a.x, 0.0); }
fn c_im(a: vec2<f32>) -> vec2<f32> { return vec2<f32>(a.y, 0.0); }
fn c_arg(a: vec2<f32>) -> vec2<f32> { return vec2<f32>(atan2(a.y, a.x), 0.0); }
fn c_mod(a: vec2<f32>) -> vec2<f32> { return vec2<f32>(length(a), 0.0); }

fn c_exp(a: vec2<f32>) -> vec2<f32> {
    return exp(a.x) * vec2<f32>(cos(a.y), sin(a.y));
}

fn c_log(a: vec2<f32>) -> vec2<f32> {
    return vec2<f32>(log(length(a)), atan2(a.y, a.x));
}

fn c_pow(a: vec2<f32>, b: vec2<f32>) -> vec2<f32> {
    if (a.x == 0.0 && a.y == 0.0) {
        return vec2<f32>(0.0, 0.0);
    }
    return c_exp(c_mul(b, c_log(a)));
}

fn c_sqrt(a: vec2<f32>) -> vec2<f32> {
    let r = sqrt(length(a));
    let t = 0.5 * atan2(a.y, a.x);
    return r * vec2<f32>(cos(t), sin(t));
}

fn c_sinh(a: vec2<f32>) -> vec2<f32> {
    return vec2<f32>(sinh(a.x) * cos(a.y), cosh(a.x) * sin(a.y));
}

fn c_cosh(a: vec2<f32>) -> vec2<f32> {
    return vec2<f32>(cosh(a.x) * cos(a.y), sinh(a.x) * sin(a.y));
}

fn c_tanh(a: vec2<f32>) -> vec2<f32> { return c_div(c_sinh(a), c_cosh(a)); }

fn c_asinh(a: vec2<f32>) -> vec2<f32> {
    return c_log(a + c_sqrt(c_mul(a, a) + C_ONE));
}

fn c_acosh(a: vec2<f32>) -> vec2<f32> {
    return c_log(a + c_mul(c_sqrt(a + C_ONE), c_sqrt(a - C_ONE)));
}

fn c_atanh(a: vec2<f32>) -> vec2<f32> {
    return 0.5 * c_log(c_div(C_ONE + a, C_ONE - a));
}
`

// computeTemplate is phase 0. Each invocation iterates transform from the
// point of its cell and stores the escape count divided by MAX_ITERATIONS.
const computeTemplate = `
const MAX_ITERATIONS: u32 = $ITERATIONSu;

struct Frame {
    // min_x, min_y, width, height of the viewport
    offset_scale: vec4<f32>,
    size: vec2<u32>,
    distance: f32,
    _pad: f32,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<storage, read> u_params: array<vec2<f32>, $PARAMS>;
@group(0) @binding(2) var<storage, read_write> escapes: array<f32>;
$LIB
fn transform(z: vec2<f32>) -> vec2<f32> {
    return $CODE;
}

@compute @workgroup_size($WG, $WG, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= frame.size.x || id.y >= frame.size.y) {
        return;
    }
    let cell = (vec2<f32>(id.xy) + vec2<f32>(0.5, 0.5)) / vec2<f32>(frame.size);
    var z = vec2<f32>(
        frame.offset_scale.x + cell.x * frame.offset_scale.z,
        frame.offset_scale.y + frame.offset_scale.w - cell.y * frame.offset_scale.w,
    );
    var n: u32 = 0u;
    for (; n < MAX_ITERATIONS; n = n + 1u) {
        if (length(z) > frame.distance) {
            break;
        }
        z = transform(z);
    }
    escapes[id.y * frame.size.x + id.x] = f32(n) / f32(MAX_ITERATIONS);
}
`

// paintShader is phase 1. It maps escape values through the lookup table.
// Colors are packed as r | g<<8 | b<<16 | a<<24, the byte order of
// image.RGBA pixels.
var paintShader = strings.NewReplacer(
	"$WG", strconv.Itoa(workgroupSize),
	"$LAST", strconv.Itoa(palette.Size-1),
).Replace(`
struct Frame {
    size: vec2<u32>,
    _pad: vec2<u32>,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var<storage, read> escapes: array<f32>;
@group(0) @binding(2) var<storage, read> lut: array<u32, 256>;
@group(0) @binding(3) var<storage, read_write> pixels: array<u32>;

@compute @workgroup_size($WG, $WG, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= frame.size.x || id.y >= frame.size.y) {
        return;
    }
    let i = id.y * frame.size.x + id.x;
    let t = clamp(escapes[i], 0.0, 1.0);
    pixels[i] = lut[u32(floor(t * $LAST.0 + 0.5))];
}
`)

// AssembleKernel wraps a generated expression into the phase 0 compute
// shader with the iteration limit baked in.
func AssembleKernel(src formula.KernelSource, iterations int) (string, error) {
	if iterations <= 0 {
		return "", fmt.Errorf("gpu: iterations must be positive, got %d", iterations)
	}
	if src.Code == "" {
		return "", fmt.Errorf("gpu: empty kernel expression")
	}
	return strings.NewReplacer(
		"$ITERATIONS", strconv.Itoa(iterations),
		"$PARAMS", strconv.Itoa(paramSlots(src.LiteralCount)),
		"$WG", strconv.Itoa(workgroupSize),
		"$LIB", complexLib,
		"$CODE", src.Code,
	).Replace(computeTemplate), nil
}

// paramSlots returns the length of the u_params array. WGSL has no
// zero-length arrays, so a formula without literals still gets one slot.
func paramSlots(literals int) int {
	return max(literals, 1)
}

// CompileSPIRV compiles WGSL source to SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
