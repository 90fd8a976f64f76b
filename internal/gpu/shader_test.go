//go:build !nogpu

package gpu

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/ssao/internal/kernel"
)

func TestSSAOShaderCompiles(t *testing.T) {
	spirv, err := CompileShaderToSPIRV(ssaoShaderSource)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("CompileShaderToSPIRV: %v", err)
	}
	if len(spirv) == 0 {
		t.Fatal("empty SPIR-V output")
	}
	// Verify SPIR-V magic number (0x07230203)
	if spirv[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", spirv[0])
	}
}

func TestSSAOShaderEntryPoint(t *testing.T) {
	module, err := ParseShader(ShaderSource())
	if err != nil {
		t.Fatalf("ParseShader: %v", err)
	}
	if err := checkEntryPoint(module, ssaoEntryPoint); err != nil {
		t.Fatal(err)
	}
	if err := checkEntryPoint(module, "missing"); err == nil {
		t.Error("checkEntryPoint accepted a missing entry point")
	}
}

func TestCheckEntryPoint_WrongStage(t *testing.T) {
	module := &ir.Module{EntryPoints: []ir.EntryPoint{{Name: "main", Stage: ir.StageVertex}}}
	if err := checkEntryPoint(module, "main"); err == nil {
		t.Error("checkEntryPoint accepted a vertex entry point")
	}
}

func TestSSAOShaderLayout(t *testing.T) {
	src := ShaderSource()
	for _, want := range []string{
		"@workgroup_size(16, 16, 1)",
		"var<workgroup> tile: array<f32, 1024>",
		"@group(0) @binding(0) var<uniform> params: Params",
		"@group(0) @binding(1) var<storage, read> depth: array<f32>",
		"@group(0) @binding(2) var<storage, read_write> ao_out: array<f32>",
		"workgroupBarrier()",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source lacks %q", want)
		}
	}
}

func TestParseShader_Error(t *testing.T) {
	if _, err := ParseShader("fn main( {"); err == nil {
		t.Error("ParseShader accepted malformed WGSL")
	}
}

func TestSSAOShaderNaNGuards(t *testing.T) {
	src := ShaderSource()
	for _, want := range []string{
		"select(0.0, dot(d * inverseSqrt(dist_sq), n), dist_sq > 0.0)",
		"select(0.0, min(cos_falloff, 1.0), cos_falloff > 0.0)",
		"if (!is_finite(r.y))",
		"if (!is_finite(ao))",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source lacks guard %q", want)
		}
	}
	// saturate lowers to FClamp, which is undefined for NaN.
	if strings.Contains(src, "saturate(") {
		t.Error("shader uses saturate; NaN inputs would be undefined")
	}
	if strings.Contains(src, "+ weigh(") {
		t.Error("shader adds weigh() results without the finite-weight check")
	}
}

// wgslConst returns the literal value of a scalar const declaration.
func wgslConst(t *testing.T, src, name string) string {
	t.Helper()
	re := regexp.MustCompile(`const ` + name + `: [a-z0-9]+ = ([-0-9.e]+)u?;`)
	m := re.FindStringSubmatch(src)
	if m == nil {
		t.Fatalf("const %s not found in shader", name)
	}
	return m[1]
}

func TestSSAOShaderConstantsMatchKernel(t *testing.T) {
	src := ShaderSource()

	floats := []struct {
		name string
		want float32
	}{
		{"ANGLE_STEP", kernel.AngleStep},
		{"OUTER_STEP", kernel.OuterStep},
	}
	for _, tt := range floats {
		v, err := strconv.ParseFloat(wgslConst(t, src, tt.name), 32)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := float32(v); math32.Abs(got-tt.want) > 1e-6*math32.Abs(tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	ints := []struct {
		name string
		want int
	}{
		{"TILE_SIZE", kernel.TileSize},
		{"GRID_SIZE", kernel.GridSize},
		{"PADDING", kernel.TilePadding},
		{"SUBGROUP_LANES", kernel.SubgroupLanes},
		{"RING_LOOPS", kernel.RingLoops},
		{"SHARED_READS", kernel.SharedReads},
		{"SHARED_STRIDE", kernel.SharedStride},
	}
	for _, tt := range ints {
		got, err := strconv.Atoi(wgslConst(t, src, tt.name))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSSAOShaderLocalOffsetsMatchKernel(t *testing.T) {
	src := ShaderSource()
	start := strings.Index(src, "var offsets = array<vec2<i32>, 12>(")
	if start < 0 {
		t.Fatal("local offset table not found in shader")
	}
	end := strings.Index(src[start:], ");")
	if end < 0 {
		t.Fatal("local offset table not terminated")
	}
	table := src[start : start+end]

	re := regexp.MustCompile(`vec2<i32>\((-?\d+), (-?\d+)\)`)
	matches := re.FindAllStringSubmatch(table, -1)
	want := kernel.LocalOffsets()
	if len(matches) != len(want) {
		t.Fatalf("shader has %d local offsets, want %d", len(matches), len(want))
	}
	for i, m := range matches {
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		if x != want[i][0] || y != want[i][1] {
			t.Errorf("offset %d = (%d, %d), want (%d, %d)", i, x, y, want[i][0], want[i][1])
		}
	}
}
