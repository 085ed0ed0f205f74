//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/overlay"
)

// openNoop opens a noop device and a uniform buffer for program tests.
func openNoop(t *testing.T) (*Device, hal.Buffer) {
	t.Helper()
	dev, err := OpenDevice(noopInstance)
	if err != nil {
		t.Fatalf("OpenDevice() = %v", err)
	}
	buf, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "test_uniforms",
		Size:  uniformBlockSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		dev.Release()
		t.Fatalf("CreateBuffer() = %v", err)
	}
	t.Cleanup(func() {
		dev.device.DestroyBuffer(buf)
		dev.Release()
	})
	return dev, buf
}

func TestUniformBlockSizeMatchesLayout(t *testing.T) {
	if got := overlay.StandardLayout.Size(); got != uniformBlockSize {
		t.Errorf("StandardLayout.Size() = %d, uniformBlockSize = %d", got, uniformBlockSize)
	}
}

func TestCompileStageEmpty(t *testing.T) {
	_, err := compileStage(overlay.StageVertex, "   \n")
	var sce *overlay.ShaderCompileError
	if !errors.As(err, &sce) || sce.Stage != overlay.StageVertex {
		t.Fatalf("compileStage(empty) = %v, want vertex ShaderCompileError", err)
	}
}

func TestCompileStageSyntaxError(t *testing.T) {
	_, err := compileStage(overlay.StageFragment, "@fragment fn fs_main( -> {")
	var sce *overlay.ShaderCompileError
	if !errors.As(err, &sce) {
		t.Fatalf("compileStage(broken) = %v, want ShaderCompileError", err)
	}
	if sce.Stage != overlay.StageFragment || sce.Diagnostic == "" {
		t.Errorf("error = %+v, want fragment stage with a diagnostic", sce)
	}
}

func TestCompileDefaultShaders(t *testing.T) {
	for stage, src := range map[overlay.ShaderStage]string{
		overlay.StageVertex:   overlay.DefaultVertexShader,
		overlay.StageFragment: overlay.DefaultFragmentShader,
	} {
		words, err := compileStage(stage, src)
		if err != nil {
			t.Fatalf("%s: compileStage() = %v", stage, err)
		}
		// SPIR-V magic number.
		if len(words) == 0 || words[0] != 0x07230203 {
			t.Errorf("%s: output is not SPIR-V", stage)
		}
	}
}

func TestReferencedLayout(t *testing.T) {
	if got := referencedLayout(overlay.DefaultFragmentShader); len(got) != len(overlay.StandardLayout) {
		t.Errorf("default shader references %d uniforms, want %d", len(got), len(overlay.StandardLayout))
	}

	got := referencedLayout("let t = u.iTime; let r = u.iResolutionX;")
	if len(got) != 1 || got[0].Name != overlay.UniformTime {
		t.Errorf("referencedLayout() = %+v, want only iTime", got)
	}
}

func TestCompileProgram(t *testing.T) {
	dev, buf := openNoop(t)

	p, err := compileProgram(dev.device, buf, gputypes.TextureFormatRGBA8Unorm, "test",
		overlay.DefaultVertexShader, overlay.DefaultFragmentShader)
	if err != nil {
		t.Fatalf("compileProgram() = %v", err)
	}
	if p.pipeline == nil || p.bindGroup == nil {
		t.Fatal("program is missing its pipeline or bind group")
	}
	if len(p.Layout()) != len(overlay.StandardLayout) {
		t.Errorf("Layout() has %d slots", len(p.Layout()))
	}

	p.Destroy()
	p.Destroy()
	if p.pipeline != nil || p.device != nil {
		t.Error("Destroy() left handles behind")
	}
}

func TestCompileProgramMissingEntryPoint(t *testing.T) {
	dev, buf := openNoop(t)

	fragment := `@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}`
	_, err := compileProgram(dev.device, buf, gputypes.TextureFormatRGBA8Unorm, "test",
		overlay.DefaultVertexShader, fragment)
	var sce *overlay.ShaderCompileError
	if !errors.As(err, &sce) || sce.Stage != overlay.StageLink {
		t.Fatalf("compileProgram() = %v, want link ShaderCompileError", err)
	}
}

func TestCompileProgramFragmentError(t *testing.T) {
	dev, buf := openNoop(t)

	_, err := compileProgram(dev.device, buf, gputypes.TextureFormatRGBA8Unorm, "test",
		overlay.DefaultVertexShader, "@fragment fn fs_main() -> @location(0) vec4<f32> { return oops; }")
	var sce *overlay.ShaderCompileError
	if !errors.As(err, &sce) || sce.Stage != overlay.StageFragment {
		t.Fatalf("compileProgram() = %v, want fragment ShaderCompileError", err)
	}
}
