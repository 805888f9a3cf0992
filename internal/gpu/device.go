// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/julia/palette"
	"github.com/gogpu/julia/render"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device errors.
var (
	// ErrNoAdapter is returned when no GPU adapter can be opened.
	ErrNoAdapter = errors.New("gpu: no GPU adapter available")

	// ErrNotHalProvider is returned by FromProvider for a provider that does
	// not expose HAL types.
	ErrNotHalProvider = errors.New("gpu: provider does not expose HAL types")

	// ErrForeignResource is returned when a resource created by another
	// device is passed to this one.
	ErrForeignResource = errors.New("gpu: resource belongs to another device")

	// ErrDeviceClosed is returned for operations on a closed device.
	ErrDeviceClosed = errors.New("gpu: device closed")
)

// fenceTimeout bounds every wait for a submitted pass.
const fenceTimeout = 5 * time.Second

// Device is a render.Device that evaluates kernels with wgpu/hal compute
// shaders. Kernel sources are compiled from WGSL to SPIR-V with naga.
//
// Device is safe for concurrent use; passes are serialized on its queue.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
	external bool // device and queue belong to a host application
	closed   bool

	computeLayout     hal.BindGroupLayout
	computePipeLayout hal.PipelineLayout

	paintShader     hal.ShaderModule
	paintLayout     hal.BindGroupLayout
	paintPipeLayout hal.PipelineLayout
	paintPipeline   hal.ComputePipeline
}

var _ render.Device = (*Device)(nil)

// Open creates a Vulkan instance and opens the first discrete or
// integrated GPU, falling back to the first adapter found.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	d := &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		name:     selected.Info.Name,
	}
	if err := d.createLayouts(); err != nil {
		d.destroyLayouts()
		d.device.Destroy()
		instance.Destroy()
		return nil, err
	}
	slogger().Info("gpu: device opened", "adapter", d.name)
	return d, nil
}

// FromProvider wraps a GPU device owned by a host application. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. Close does not destroy the shared device.
func FromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHalProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHalProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHalProvider)
	}

	d := &Device{device: device, queue: queue, name: "shared", external: true}
	if err := d.createLayouts(); err != nil {
		d.destroyLayouts()
		return nil, err
	}
	slogger().Info("gpu: using shared device")
	return d, nil
}

// Name implements render.Device.
func (d *Device) Name() string { return "wgpu" }

// AdapterName returns the name reported by the adapter.
func (d *Device) AdapterName() string { return d.name }

func (d *Device) createLayouts() error {
	var err error
	d.computeLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "julia_compute_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute bind group layout: %w", err)
	}
	d.computePipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "julia_compute_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{d.computeLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline layout: %w", err)
	}

	spirv, err := CompileSPIRV(paintShader)
	if err != nil {
		return err
	}
	d.paintShader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "julia_paint",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint shader: %w", err)
	}
	d.paintLayout, err = d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "julia_paint_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint bind group layout: %w", err)
	}
	d.paintPipeLayout, err = d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "julia_paint_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{d.paintLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint pipeline layout: %w", err)
	}
	d.paintPipeline, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "julia_paint_pipeline", Layout: d.paintPipeLayout,
		Compute: hal.ComputeState{Module: d.paintShader, EntryPoint: entryPoint},
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint pipeline: %w", err)
	}
	return nil
}

func (d *Device) destroyLayouts() {
	if d.paintPipeline != nil {
		d.device.DestroyComputePipeline(d.paintPipeline)
		d.paintPipeline = nil
	}
	if d.paintPipeLayout != nil {
		d.device.DestroyPipelineLayout(d.paintPipeLayout)
		d.paintPipeLayout = nil
	}
	if d.paintLayout != nil {
		d.device.DestroyBindGroupLayout(d.paintLayout)
		d.paintLayout = nil
	}
	if d.paintShader != nil {
		d.device.DestroyShaderModule(d.paintShader)
		d.paintShader = nil
	}
	if d.computePipeLayout != nil {
		d.device.DestroyPipelineLayout(d.computePipeLayout)
		d.computePipeLayout = nil
	}
	if d.computeLayout != nil {
		d.device.DestroyBindGroupLayout(d.computeLayout)
		d.computeLayout = nil
	}
}

// kernel is a compiled phase 0 pipeline with its uniform buffers.
type kernel struct {
	dev      *Device
	shader   hal.ShaderModule
	pipeline hal.ComputePipeline
	frame    hal.Buffer
	params   hal.Buffer
	slots    int
}

func (k *kernel) Release() {
	k.dev.mu.Lock()
	defer k.dev.mu.Unlock()
	if k.dev.closed {
		return
	}
	d := k.dev.device
	if k.pipeline != nil {
		d.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.shader != nil {
		d.DestroyShaderModule(k.shader)
		k.shader = nil
	}
	destroyBuffers(d, &k.frame, &k.params)
}

// BuildKernel implements render.Device.
func (d *Device) BuildKernel(spec render.KernelSpec) (render.Kernel, error) {
	wgsl, err := AssembleKernel(spec.Source, spec.Iterations)
	if err != nil {
		return nil, err
	}
	spirv, err := CompileSPIRV(wgsl)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}

	k := &kernel{dev: d, slots: paramSlots(spec.Source.LiteralCount)}
	if err := d.initKernel(k, spirv); err != nil {
		if k.pipeline != nil {
			d.device.DestroyComputePipeline(k.pipeline)
		}
		if k.shader != nil {
			d.device.DestroyShaderModule(k.shader)
		}
		destroyBuffers(d.device, &k.frame, &k.params)
		return nil, err
	}
	return k, nil
}

func (d *Device) initKernel(k *kernel, spirv []uint32) error {
	var err error
	k.shader, err = d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "julia_kernel",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("gpu: create kernel shader: %w", err)
	}
	k.pipeline, err = d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "julia_kernel_pipeline", Layout: d.computePipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: entryPoint},
	})
	if err != nil {
		return fmt.Errorf("gpu: create kernel pipeline: %w", err)
	}
	k.frame, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_frame", Size: computeFrameSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create frame buffer: %w", err)
	}
	k.params, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_params", Size: uint64(k.slots) * 8,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create params buffer: %w", err)
	}
	return nil
}

// output holds the escape values, the packed colors and a staging buffer
// for reading the colors back into img.
type output struct {
	dev           *Device
	width, height int
	frame         hal.Buffer
	escapes       hal.Buffer
	pixels        hal.Buffer
	staging       hal.Buffer
	img           *image.RGBA
}

func (o *output) Size() (int, int)   { return o.width, o.height }
func (o *output) Image() *image.RGBA { return o.img }

func (o *output) Release() {
	o.dev.mu.Lock()
	defer o.dev.mu.Unlock()
	if o.dev.closed {
		return
	}
	destroyBuffers(o.dev.device, &o.frame, &o.escapes, &o.pixels, &o.staging)
}

func (o *output) cells() uint64 {
	return uint64(o.width) * uint64(o.height)
}

// AllocateOutput implements render.Device.
func (d *Device) AllocateOutput(width, height int) (render.Output, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid output size %dx%d", width, height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}

	o := &output{dev: d, width: width, height: height}
	if err := d.initOutput(o); err != nil {
		destroyBuffers(d.device, &o.frame, &o.escapes, &o.pixels, &o.staging)
		return nil, err
	}
	o.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return o, nil
}

func (d *Device) initOutput(o *output) error {
	size := o.cells() * 4
	var err error
	o.frame, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_paint_frame", Size: paintFrameSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint frame buffer: %w", err)
	}
	o.escapes, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_escapes", Size: size,
		Usage: gputypes.BufferUsageStorage,
	})
	if err != nil {
		return fmt.Errorf("gpu: create escape buffer: %w", err)
	}
	o.pixels, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_pixels", Size: size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create pixel buffer: %w", err)
	}
	o.staging, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}

	frame := make([]byte, paintFrameSize)
	binary.LittleEndian.PutUint32(frame[0:], uint32(o.width))  //nolint:gosec // validated positive
	binary.LittleEndian.PutUint32(frame[4:], uint32(o.height)) //nolint:gosec // validated positive
	d.queue.WriteBuffer(o.frame, 0, frame)
	return nil
}

type lookupTable struct {
	dev *Device
	buf hal.Buffer
}

func (l *lookupTable) Upload(t *palette.Table) error {
	if t == nil {
		return errors.New("gpu: nil lookup table")
	}
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.dev.closed || l.buf == nil {
		return ErrDeviceClosed
	}
	l.dev.queue.WriteBuffer(l.buf, 0, PackTable(t))
	return nil
}

func (l *lookupTable) Release() {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.dev.closed {
		return
	}
	destroyBuffers(l.dev.device, &l.buf)
}

// NewLookupTable implements render.Device.
func (d *Device) NewLookupTable() (render.LookupTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "julia_lut", Size: lutSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create lookup table buffer: %w", err)
	}
	return &lookupTable{dev: d, buf: buf}, nil
}

// Compute implements render.Device.
func (d *Device) Compute(k render.Kernel, out render.Output, u render.Uniforms) error {
	kern, ok := k.(*kernel)
	if !ok || kern.dev != d {
		return fmt.Errorf("%w: kernel %T", ErrForeignResource, k)
	}
	o, ok := out.(*output)
	if !ok || o.dev != d {
		return fmt.Errorf("%w: output %T", ErrForeignResource, out)
	}
	if len(u.Literals) > kern.slots {
		return fmt.Errorf("gpu: %d literals bound to a kernel with %d slots", len(u.Literals), kern.slots)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}

	d.queue.WriteBuffer(kern.frame, 0, PackFrame(u, o.width, o.height))
	d.queue.WriteBuffer(kern.params, 0, PackLiterals(u, kern.slots))

	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "julia_compute_bind", Layout: d.computeLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: kern.frame.NativeHandle(), Offset: 0, Size: computeFrameSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: kern.params.NativeHandle(), Offset: 0, Size: uint64(kern.slots) * 8}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: o.escapes.NativeHandle(), Offset: 0, Size: o.cells() * 4}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bg)

	return d.dispatch("julia_compute", kern.pipeline, bg, o, nil)
}

// Paint implements render.Device.
func (d *Device) Paint(_ render.Kernel, out render.Output, lut render.LookupTable) error {
	o, ok := out.(*output)
	if !ok || o.dev != d {
		return fmt.Errorf("%w: output %T", ErrForeignResource, out)
	}
	l, ok := lut.(*lookupTable)
	if !ok || l.dev != d {
		return fmt.Errorf("%w: lookup table %T", ErrForeignResource, lut)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDeviceClosed
	}

	size := o.cells() * 4
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "julia_paint_bind", Layout: d.paintLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: o.frame.NativeHandle(), Offset: 0, Size: paintFrameSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: o.escapes.NativeHandle(), Offset: 0, Size: size}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: l.buf.NativeHandle(), Offset: 0, Size: lutSize}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: o.pixels.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create paint bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bg)

	return d.dispatch("julia_paint", d.paintPipeline, bg, o, func(enc hal.CommandEncoder) {
		enc.CopyBufferToBuffer(o.pixels, o.staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: size},
		})
	})
}

// dispatch records one compute pass over the cells of o, optionally
// followed by extra commands, submits it and waits for completion. When
// the pass copies into the staging buffer the colors are read back into
// o.img. Caller must hold d.mu.
func (d *Device) dispatch(label string, pipeline hal.ComputePipeline, bg hal.BindGroup, o *output, after func(hal.CommandEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	w, h := uint32(o.width), uint32(o.height) //nolint:gosec // validated positive
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((w+workgroupSize-1)/workgroupSize, (h+workgroupSize-1)/workgroupSize, 1)
	pass.End()

	if after != nil {
		after(encoder)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for %s: %w", label, err)
	}
	if !fenceOK {
		return fmt.Errorf("gpu: wait for %s: timed out after %v", label, fenceTimeout)
	}

	if after == nil {
		return nil
	}
	if err := d.queue.ReadBuffer(o.staging, 0, o.img.Pix); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}
	return nil
}

// Close destroys the pipelines and, unless the device is shared, the
// device and instance. Resources still held by surfaces become invalid.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.destroyLayouts()
	if !d.external {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.closed = true
}

func destroyBuffers(d hal.Device, bufs ...*hal.Buffer) {
	for _, b := range bufs {
		if *b != nil {
			d.DestroyBuffer(*b)
			*b = nil
		}
	}
}
