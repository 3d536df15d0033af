//go:build linux

package display

import (
	"fmt"
	"image"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	fbiogetVScreenInfo = 0x4600
	fbioputVScreenInfo = 0x4601
	fbiogetFScreenInfo = 0x4602

	targetBitsPerPixel = 32
)

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	XRes, YRes               uint32
	XResVirtual, YResVirtual uint32
	XOffset, YOffset         uint32
	BitsPerPixel             uint32
	Grayscale                uint32
	Red, Green, Blue, Transp bitfield
	NonStd                   uint32
	Activate                 uint32
	Height, Width            uint32
	AccelFlags               uint32
	PixClock                 uint32
	LeftMargin, RightMargin  uint32
	UpperMargin, LowerMargin uint32
	HSyncLen, VSyncLen       uint32
	Sync                     uint32
	VMode                    uint32
	Rotate                   uint32
	Colorspace               uint32
	Reserved                 [4]uint32
}

// fixScreenInfo mirrors struct fb_fix_screeninfo.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// Framebuffer is a memory-mapped Linux framebuffer device.
type Framebuffer struct {
	mapped
	path string
	fd   int
}

// OpenFramebuffer maps a device such as /dev/fb0. The device is switched to
// 32 bits per pixel when it reports another depth; if that is refused the
// reported depth is used when supported.
func OpenFramebuffer(path string) (*Framebuffer, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	fb, err := mapFramebuffer(path, fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return fb, nil
}

func mapFramebuffer(path string, fd int) (*Framebuffer, error) {
	var v varScreenInfo
	if err := ioctl(fd, fbiogetVScreenInfo, unsafe.Pointer(&v)); err != nil {
		return nil, fmt.Errorf("read variable screen info %s: %w", path, err)
	}
	if v.BitsPerPixel != targetBitsPerPixel {
		want := v
		want.BitsPerPixel = targetBitsPerPixel
		if err := ioctl(fd, fbioputVScreenInfo, unsafe.Pointer(&want)); err == nil {
			if err := ioctl(fd, fbiogetVScreenInfo, unsafe.Pointer(&v)); err != nil {
				return nil, fmt.Errorf("read variable screen info %s: %w", path, err)
			}
		}
	}
	var f fixScreenInfo
	if err := ioctl(fd, fbiogetFScreenInfo, unsafe.Pointer(&f)); err != nil {
		return nil, fmt.Errorf("read fixed screen info %s: %w", path, err)
	}

	format := pixelFormat{
		bytesPerPixel: int(v.BitsPerPixel / 8),
		red:           v.Red,
		green:         v.Green,
		blue:          v.Blue,
		transp:        v.Transp,
	}
	if err := format.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	mem, err := unix.Mmap(fd, 0, int(f.SmemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("map framebuffer %s: %w", path, err)
	}
	return &Framebuffer{
		mapped: mapped{
			mem:    mem,
			size:   image.Pt(int(v.XRes), int(v.YRes)),
			stride: int(f.LineLength),
			format: format,
		},
		path: path,
		fd:   fd,
	}, nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Path is the device path.
func (fb *Framebuffer) Path() string { return fb.path }

// Close unmaps the memory and closes the device.
func (fb *Framebuffer) Close() error {
	var err error
	if fb.mem != nil {
		err = unix.Munmap(fb.mem)
		fb.mem = nil
	}
	if cerr := unix.Close(fb.fd); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("close framebuffer %s: %w", fb.path, err)
	}
	return nil
}
