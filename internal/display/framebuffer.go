package display

import (
	"fmt"
	"image"
	"image/color"
)

// bitfield mirrors struct fb_bitfield.
type bitfield struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// pixelFormat packs colours into a device's native pixel layout.
type pixelFormat struct {
	bytesPerPixel int
	red, green    bitfield
	blue, transp  bitfield
}

func (f pixelFormat) pack(r, g, b uint8) uint32 {
	v := channel(r, f.red) | channel(g, f.green) | channel(b, f.blue)
	if f.transp.Length > 0 {
		v |= channel(0xff, f.transp)
	}
	return v
}

func channel(c uint8, bf bitfield) uint32 {
	if bf.Length == 0 {
		return 0
	}
	return (uint32(c) >> (8 - min(bf.Length, 8))) << bf.Offset
}

func (f pixelFormat) validate() error {
	switch f.bytesPerPixel {
	case 2, 4:
		return nil
	default:
		return fmt.Errorf("unsupported framebuffer depth: %d bits per pixel", 8*f.bytesPerPixel)
	}
}

// putRow writes one row of src pixels into a device row.
func (f pixelFormat) putRow(dst []byte, src []byte) {
	for i, j := 0, 0; i+3 < len(src) && j+f.bytesPerPixel <= len(dst); i, j = i+4, j+f.bytesPerPixel {
		v := f.pack(src[i], src[i+1], src[i+2])
		switch f.bytesPerPixel {
		case 4:
			dst[j], dst[j+1], dst[j+2], dst[j+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
		case 2:
			dst[j], dst[j+1] = byte(v), byte(v>>8)
		}
	}
}

// mapped is a framebuffer's pixel memory with its geometry, independent of
// how the memory was obtained.
type mapped struct {
	mem    []byte
	size   image.Point
	stride int
	format pixelFormat
}

func (m *mapped) Size() image.Point { return m.size }

func (m *mapped) Blit(src *image.RGBA, at image.Point) error {
	b := src.Bounds()
	dst := image.Rectangle{Min: at, Max: at.Add(b.Size())}.Intersect(image.Rectangle{Max: m.size})
	if dst.Empty() {
		return nil
	}
	sp := b.Min.Add(dst.Min.Sub(at))
	bpp := m.format.bytesPerPixel
	for y := 0; y < dst.Dy(); y++ {
		s := src.Pix[src.PixOffset(sp.X, sp.Y+y):][:4*dst.Dx()]
		off := (dst.Min.Y+y)*m.stride + dst.Min.X*bpp
		m.format.putRow(m.mem[off:off+bpp*dst.Dx()], s)
	}
	return nil
}

func (m *mapped) Fill(c color.RGBA) error {
	row := make([]byte, 4*m.size.X)
	for i := 0; i < len(row); i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}
	bpp := m.format.bytesPerPixel
	for y := 0; y < m.size.Y; y++ {
		off := y * m.stride
		m.format.putRow(m.mem[off:off+bpp*m.size.X], row)
	}
	return nil
}
