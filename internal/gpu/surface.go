//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/overlay"
)

// ViewHost is implemented by hosts that own a presentable GPU surface, for
// example a window swapchain. The overlay renders straight into the view
// and skips readback.
type ViewHost interface {
	overlay.Host

	// AcquireView returns the view to render the next frame into. It must
	// match the backing size passed in.
	AcquireView(width, height uint32) (hal.TextureView, error)

	// PresentView displays the frame rendered into the last acquired view.
	PresentView()
}

// ErrNoPresentation is returned by Create for hosts that implement neither
// overlay.Presenter nor ViewHost.
var ErrNoPresentation = errors.New("gpu: host cannot display GPU output")

// ErrSurfaceDestroyed is returned by operations on a destroyed surface.
var ErrSurfaceDestroyed = errors.New("gpu: surface destroyed")

// Surface is an overlay drawing surface backed by a HAL device.
//
// Surface is NOT safe for concurrent use; the owning overlay session
// serializes all calls.
type Surface struct {
	dev   *Device
	host  overlay.Host
	label string

	presenter overlay.Presenter // offscreen mode
	view      ViewHost          // direct mode

	format      gputypes.TextureFormat
	clear       gputypes.Color
	uniformBuf  hal.Buffer
	uniformData []byte

	target renderTarget
	width  uint32
	height uint32

	frame    *image.RGBA
	readback []byte
}

var _ overlay.Surface = (*Surface)(nil)

// newSurface creates the uniform buffer, sizes the surface to the host box,
// and attaches it. The surface takes ownership of dev: on failure dev is
// released.
func newSurface(dev *Device, h overlay.Host, opts overlay.SurfaceOptions, viewFormat gputypes.TextureFormat) (*Surface, error) {
	s := &Surface{
		dev:    dev,
		host:   h,
		label:  opts.Label,
		format: gputypes.TextureFormatRGBA8Unorm,
		clear:  gputypes.Color{R: 0, G: 0, B: 0, A: 1},
	}
	if s.label == "" {
		s.label = "overlay"
	}
	if opts.Transparent {
		s.clear = gputypes.Color{}
	}

	switch host := h.(type) {
	case ViewHost:
		s.view = host
		s.format = viewFormat
	case overlay.Presenter:
		s.presenter = host
	default:
		dev.Release()
		return nil, ErrNoPresentation
	}

	buf, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: s.label + "_uniforms",
		Size:  uniformBlockSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("create uniform buffer: %w", err)
	}
	s.uniformBuf = buf
	s.uniformData = make([]byte, uniformBlockSize)

	w, ht := h.ContentBox()
	if err := s.Resize(overlay.SurfaceDimensions{Width: w, Height: ht, PixelRatio: 1}); err != nil {
		s.release()
		return nil, err
	}

	h.Attach(s)
	return s, nil
}

// Compile builds a program for this surface's target format.
func (s *Surface) Compile(vertex, fragment string) (overlay.Program, error) {
	if s.dev == nil {
		return nil, ErrSurfaceDestroyed
	}
	p, err := compileProgram(s.dev.device, s.uniformBuf, s.format, s.label, vertex, fragment)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Resize recomputes the backing store. Matching sizes are a no-op.
func (s *Surface) Resize(dims overlay.SurfaceDimensions) error {
	if s.dev == nil {
		return ErrSurfaceDestroyed
	}
	w, h := dims.Backing()
	if w == s.width && h == s.height {
		return nil
	}
	if s.presenter != nil {
		if err := s.target.ensure(s.dev.device, w, h, s.format, s.label); err != nil {
			return fmt.Errorf("resize %dx%d: %w", w, h, err)
		}
		s.frame = image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
		s.readback = make([]byte, uint64(s.target.pitch)*uint64(h))
	}
	s.width, s.height = w, h
	slogger().Debug("gpu: surface resized", "label", s.label, "width", w, "height", h)
	return nil
}

// BackingSize returns the backing store size in physical pixels.
func (s *Surface) BackingSize() (uint32, uint32) {
	return s.width, s.height
}

// Draw uploads the uniforms and renders one full-surface triangle.
func (s *Surface) Draw(prog overlay.Program, u *overlay.UniformStore) error {
	if s.dev == nil {
		return ErrSurfaceDestroyed
	}
	p, ok := prog.(*Program)
	if !ok || p.pipeline == nil {
		return fmt.Errorf("gpu: program %T not compiled by this backend", prog)
	}

	s.uniformData = u.Pack(s.uniformData)
	if err := s.dev.queue.WriteBuffer(s.uniformBuf, 0, s.uniformData); err != nil {
		return fmt.Errorf("upload uniforms: %w", err)
	}

	var view hal.TextureView
	if s.view != nil {
		v, err := s.view.AcquireView(s.width, s.height)
		if err != nil {
			return fmt.Errorf("acquire view: %w", err)
		}
		view = v
	} else {
		view = s.target.colorView
	}

	if err := s.encodeSubmit(p, view); err != nil {
		return err
	}

	if s.view != nil {
		s.view.PresentView()
		return nil
	}
	if err := s.readStaging(); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	s.unpackFrame()
	s.presenter.PresentFrame(s.frame)
	return nil
}

// encodeSubmit records the render pass, plus the readback copy in offscreen
// mode, and waits for the GPU to finish.
func (s *Surface) encodeSubmit(p *Program, view hal.TextureView) error {
	device := s.dev.device
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: s.label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(s.label + "_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: s.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: s.clear,
		}},
	})
	rp.SetViewport(0, 0, float32(s.width), float32(s.height), 0, 1)
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	if s.presenter != nil {
		// The render target must leave attachment layout before the copy and
		// return to it for the next frame.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: s.target.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(s.target.colorTex, s.target.staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: s.target.pitch, RowsPerImage: s.height},
			TextureBase:  hal.ImageCopyTexture{Texture: s.target.colorTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: s.target.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if _, err := s.dev.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	// One frame in flight: the staging buffer and uniforms are reused by the
	// next draw.
	if err := device.WaitIdle(); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	return nil
}

// readStaging copies the mapped staging buffer into s.readback.
func (s *Surface) readStaging() error {
	size := uint64(len(s.readback))
	m, err := s.dev.device.MapBuffer(s.target.staging, 0, size)
	if err != nil {
		return err
	}
	copy(s.readback, unsafe.Slice((*byte)(m.Ptr), size))
	return s.dev.device.UnmapBuffer(s.target.staging)
}

// unpackFrame strips row padding from the readback into the frame image.
func (s *Surface) unpackFrame() {
	rowBytes := int(s.width) * 4
	pitch := int(s.target.pitch)
	for row := 0; row < int(s.height); row++ {
		copy(s.frame.Pix[row*s.frame.Stride:row*s.frame.Stride+rowBytes], s.readback[row*pitch:row*pitch+rowBytes])
	}
}

// Destroy detaches the surface from its host and releases every GPU
// resource, then the device. Subsequent calls are no-ops.
func (s *Surface) Destroy() {
	if s.dev == nil {
		return
	}
	s.host.Detach(s)
	s.release()
}

func (s *Surface) release() {
	s.target.destroy(s.dev.device)
	if s.uniformBuf != nil {
		s.dev.device.DestroyBuffer(s.uniformBuf)
		s.uniformBuf = nil
	}
	s.dev.Release()
	s.dev = nil
	s.frame = nil
	s.readback = nil
	s.width, s.height = 0, 0
	slogger().Debug("gpu: surface released", "label", s.label)
}
