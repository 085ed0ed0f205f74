//go:build !nogpu

package gpu

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/overlay"
)

// uniformBlockSize is the byte size of overlay.StandardLayout, the uniform
// block every program binds.
const uniformBlockSize = 48

// Entry points every overlay shader pair must provide.
const (
	vertexEntry   = "vs_main"
	fragmentEntry = "fs_main"
)

var (
	vertexEntryRe   = regexp.MustCompile(`@vertex\s+fn\s+` + vertexEntry + `\b`)
	fragmentEntryRe = regexp.MustCompile(`@fragment\s+fn\s+` + fragmentEntry + `\b`)
)

// Program is a compiled overlay render pipeline together with its bind
// group over the owning surface's uniform buffer.
type Program struct {
	device hal.Device

	vertexShader   hal.ShaderModule
	fragmentShader hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipeLayout     hal.PipelineLayout
	pipeline       hal.RenderPipeline
	bindGroup      hal.BindGroup

	layout overlay.UniformLayout
}

var _ overlay.Program = (*Program)(nil)

// Layout returns the StandardLayout slots the fragment source references.
func (p *Program) Layout() overlay.UniformLayout { return p.layout }

// Destroy releases all GPU objects in reverse creation order. Safe to call
// multiple times.
func (p *Program) Destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.fragmentShader != nil {
		p.device.DestroyShaderModule(p.fragmentShader)
		p.fragmentShader = nil
	}
	if p.vertexShader != nil {
		p.device.DestroyShaderModule(p.vertexShader)
		p.vertexShader = nil
	}
	p.device = nil
}

// compileStage translates WGSL to SPIR-V words. Failures carry the naga
// diagnostic and the stage.
func compileStage(stage overlay.ShaderStage, source string) ([]uint32, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &overlay.ShaderCompileError{Stage: stage, Diagnostic: "empty source"}
	}
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &overlay.ShaderCompileError{Stage: stage, Diagnostic: err.Error()}
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// referencedLayout returns the StandardLayout slots whose names occur in
// source as whole identifiers.
func referencedLayout(source string) overlay.UniformLayout {
	var layout overlay.UniformLayout
	for _, slot := range overlay.StandardLayout {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(slot.Name) + `\b`)
		if re.MatchString(source) {
			layout = append(layout, slot)
		}
	}
	return layout
}

// linkError reports a pipeline-level failure.
func linkError(format string, args ...any) error {
	return &overlay.ShaderCompileError{Stage: overlay.StageLink, Diagnostic: fmt.Sprintf(format, args...)}
}

// compileProgram builds the render pipeline for a vertex/fragment pair,
// targeting format and binding uniforms at group(0) binding(0).
func compileProgram(device hal.Device, uniforms hal.Buffer, format gputypes.TextureFormat, label, vertex, fragment string) (*Program, error) { //nolint:funlen // GPU pipeline descriptors are inherently verbose
	vertexCode, err := compileStage(overlay.StageVertex, vertex)
	if err != nil {
		return nil, err
	}
	fragmentCode, err := compileStage(overlay.StageFragment, fragment)
	if err != nil {
		return nil, err
	}
	if !vertexEntryRe.MatchString(vertex) {
		return nil, linkError("vertex entry point %s not found", vertexEntry)
	}
	if !fragmentEntryRe.MatchString(fragment) {
		return nil, linkError("fragment entry point %s not found", fragmentEntry)
	}

	p := &Program{device: device, layout: referencedLayout(fragment)}

	p.vertexShader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_vertex",
		Source: hal.ShaderSource{SPIRV: vertexCode},
	})
	if err != nil {
		p.Destroy()
		return nil, &overlay.ShaderCompileError{Stage: overlay.StageVertex, Diagnostic: err.Error()}
	}

	p.fragmentShader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_fragment",
		Source: hal.ShaderSource{SPIRV: fragmentCode},
	})
	if err != nil {
		p.Destroy()
		return nil, &overlay.ShaderCompileError{Stage: overlay.StageFragment, Diagnostic: err.Error()}
	}

	// One uniform buffer at group(0) binding(0), visible to both stages.
	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vertexShader,
			EntryPoint: vertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     p.fragmentShader,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.Destroy()
		return nil, linkError("%v", err)
	}

	p.bindGroup, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniforms.NativeHandle(), Offset: 0, Size: uniformBlockSize,
			}},
		},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create bind group: %w", err)
	}

	return p, nil
}
