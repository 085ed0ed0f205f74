// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package overlay

import (
	"encoding/binary"
	"math"
	"sort"
)

// Built-in uniform names. The default shader consumes all of them; custom
// shaders may reference any subset.
const (
	UniformTime       = "iTime"       // seconds since session start, scaled by Config.Speed
	UniformResolution = "iResolution" // backing-store size in physical pixels
	UniformColor      = "iColor"      // tint, straight RGBA in [0, 1]
	UniformScale      = "iScale"      // spatial-frequency multiplier
	UniformOpacity    = "iOpacity"    // overall opacity in [0, 1]
	UniformMouse      = "iMouse"      // pointer position in physical pixels
)

// UniformKind is the tag of a UniformValue.
type UniformKind uint8

const (
	KindFloat UniformKind = iota + 1
	KindVec2
	KindColor
)

// byteSize returns the packed size of a value of this kind.
func (k UniformKind) byteSize() uint32 {
	switch k {
	case KindFloat:
		return 4
	case KindVec2:
		return 8
	case KindColor:
		return 16
	default:
		return 0
	}
}

func (k UniformKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindColor:
		return "color"
	default:
		return "invalid"
	}
}

// UniformValue is an immutable tagged union of a scalar float, a vector2, or
// a color. Values are replaced wholesale on every write.
type UniformValue struct {
	kind UniformKind
	v    [4]float32
}

// Float returns a scalar uniform value.
func Float(f float32) UniformValue {
	return UniformValue{kind: KindFloat, v: [4]float32{f}}
}

// Vec2 returns a two-component uniform value.
func Vec2(x, y float32) UniformValue {
	return UniformValue{kind: KindVec2, v: [4]float32{x, y}}
}

// ColorValue returns a color uniform value from straight (non-premultiplied)
// RGBA components in [0, 1].
func ColorValue(r, g, b, a float32) UniformValue {
	return UniformValue{kind: KindColor, v: [4]float32{r, g, b, a}}
}

// Kind returns the value's tag. The zero UniformValue has no valid kind.
func (u UniformValue) Kind() UniformKind { return u.kind }

// Float returns the scalar component.
func (u UniformValue) Float() float32 { return u.v[0] }

// Vec2 returns the first two components.
func (u UniformValue) Vec2() (x, y float32) { return u.v[0], u.v[1] }

// Color returns all four components.
func (u UniformValue) Color() (r, g, b, a float32) { return u.v[0], u.v[1], u.v[2], u.v[3] }

// UniformSlot places one named uniform in the program's uniform block.
type UniformSlot struct {
	Name   string
	Kind   UniformKind
	Offset uint32 // byte offset in the uniform block
}

// UniformLayout describes a program's uniform block.
type UniformLayout []UniformSlot

// StandardLayout is the uniform block shared by the built-in shader and
// every shader compiled by the GPU backend:
//
//	struct Uniforms {
//	    iResolution: vec2<f32>, // offset 0
//	    iTime:       f32,       // offset 8
//	    iScale:      f32,       // offset 12
//	    iColor:      vec4<f32>, // offset 16
//	    iMouse:      vec2<f32>, // offset 32
//	    iOpacity:    f32,       // offset 40
//	}
var StandardLayout = UniformLayout{
	{Name: UniformResolution, Kind: KindVec2, Offset: 0},
	{Name: UniformTime, Kind: KindFloat, Offset: 8},
	{Name: UniformScale, Kind: KindFloat, Offset: 12},
	{Name: UniformColor, Kind: KindColor, Offset: 16},
	{Name: UniformMouse, Kind: KindVec2, Offset: 32},
	{Name: UniformOpacity, Kind: KindFloat, Offset: 40},
}

// Size returns the block size in bytes, rounded up to 16 bytes as required
// for uniform buffers.
func (l UniformLayout) Size() uint32 {
	var end uint32
	for _, s := range l {
		if e := s.Offset + s.Kind.byteSize(); e > end {
			end = e
		}
	}
	return (end + 15) &^ 15
}

// Lookup returns the slot for name.
func (l UniformLayout) Lookup(name string) (UniformSlot, bool) {
	for _, s := range l {
		if s.Name == name {
			return s, true
		}
	}
	return UniformSlot{}, false
}

// UniformStore holds the current value of every uniform a program consumes.
//
// Writes to names the program does not declare are silently ignored, so
// shader variants with differing uniform sets share one code path.
// UniformStore is NOT safe for concurrent use; the owning session serializes
// all writes.
type UniformStore struct {
	slots  map[string]UniformSlot
	values map[string]UniformValue
	size   uint32
}

// NewUniformStore creates a store for layout. iTime is always present: if
// layout does not declare it, the StandardLayout slot is added.
func NewUniformStore(layout UniformLayout) *UniformStore {
	s := &UniformStore{
		slots:  make(map[string]UniformSlot, len(layout)+1),
		values: make(map[string]UniformValue, len(layout)+1),
	}
	for _, slot := range layout {
		s.slots[slot.Name] = slot
	}
	if _, ok := s.slots[UniformTime]; !ok {
		slot, _ := StandardLayout.Lookup(UniformTime)
		s.slots[UniformTime] = slot
		layout = append(layout[:len(layout):len(layout)], slot)
	}
	s.size = layout.Size()
	s.values[UniformTime] = Float(0)
	return s
}

// Set replaces the stored value for name and reports whether it was applied.
// Unknown names and values whose kind does not match the slot are no-ops.
func (s *UniformStore) Set(name string, v UniformValue) bool {
	slot, ok := s.slots[name]
	if !ok || slot.Kind != v.kind {
		return false
	}
	s.values[name] = v
	return true
}

// Get returns the current value for name.
func (s *UniformStore) Get(name string) (UniformValue, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether the program declares name.
func (s *UniformStore) Has(name string) bool {
	_, ok := s.slots[name]
	return ok
}

// Names returns the declared uniform names in sorted order.
func (s *UniformStore) Names() []string {
	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the packed block size in bytes.
func (s *UniformStore) Size() uint32 {
	return s.size
}

// Pack writes the uniform block into dst (reallocating if it is too small)
// and returns it. Components are little-endian float32. Unset uniforms are
// zero.
func (s *UniformStore) Pack(dst []byte) []byte {
	if uint32(cap(dst)) < s.size {
		dst = make([]byte, s.size)
	}
	dst = dst[:s.size]
	clear(dst)
	for name, v := range s.values {
		slot := s.slots[name]
		n := slot.Kind.byteSize() / 4
		for i := uint32(0); i < n; i++ {
			off := slot.Offset + i*4
			binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(v.v[i]))
		}
	}
	return dst
}
