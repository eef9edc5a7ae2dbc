// Package testimg builds small encoded images for tests.
package testimg

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
)

// Solid returns a w×h NRGBA image filled with c.
func Solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// Palette used by GIF fixtures. Index 0 is transparent.
var Palette = color.Palette{
	color.NRGBA{},
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, B: 255, A: 255},
}

// Colors matching the Palette indices.
var (
	Transparent = color.NRGBA{}
	Red         = color.NRGBA{R: 255, A: 255}
	Green       = color.NRGBA{G: 255, A: 255}
	Blue        = color.NRGBA{B: 255, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// GIFFrame describes one GIF frame: a rectangle filled with one palette index.
type GIFFrame struct {
	Rect     image.Rectangle
	Index    uint8
	Delay    int // hundredths of a second
	Disposal byte
}

// GIF encodes frames on a w×h canvas.
func GIF(w, h int, frames ...GIFFrame) []byte {
	g := &gif.GIF{
		Config: image.Config{Width: w, Height: h, ColorModel: Palette},
	}
	for _, f := range frames {
		p := image.NewPaletted(f.Rect, Palette)
		for i := range p.Pix {
			p.Pix[i] = f.Index
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, f.Delay)
		g.Disposal = append(g.Disposal, f.Disposal)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNG encodes img as a still PNG.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// APNG dispose and blend operators.
const (
	APNGDisposeNone       = 0
	APNGDisposeBackground = 1
	APNGDisposePrevious   = 2
	APNGBlendSource       = 0
	APNGBlendOver         = 1
)

// APNGFrame describes one animation frame.
type APNGFrame struct {
	Image    *image.NRGBA
	X, Y     int
	DelayNum uint16
	DelayDen uint16
	Dispose  byte
	Blend    byte
}

// APNG encodes an animated PNG with the given canvas size. Every frame image
// must encode to the same PNG color type, so either all frames carry
// translucent pixels or none do. The first frame doubles as the default image.
func APNG(w, h int, loops uint32, frames ...APNGFrame) []byte {
	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")

	var ihdr []byte
	var seq uint32
	for i, f := range frames {
		chunks := pngChunks(PNG(f.Image))
		if i == 0 {
			ihdr = append([]byte(nil), chunks["IHDR"][0]...)
			binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
			binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
			writeChunk(&out, "IHDR", ihdr)

			actl := make([]byte, 8)
			binary.BigEndian.PutUint32(actl[0:4], uint32(len(frames)))
			binary.BigEndian.PutUint32(actl[4:8], loops)
			writeChunk(&out, "acTL", actl)
		} else if chunks["IHDR"][0][9] != ihdr[9] {
			panic("testimg: frames encode to different PNG color types")
		}

		b := f.Image.Bounds()
		fctl := make([]byte, 26)
		binary.BigEndian.PutUint32(fctl[0:4], seq)
		binary.BigEndian.PutUint32(fctl[4:8], uint32(b.Dx()))
		binary.BigEndian.PutUint32(fctl[8:12], uint32(b.Dy()))
		binary.BigEndian.PutUint32(fctl[12:16], uint32(f.X))
		binary.BigEndian.PutUint32(fctl[16:20], uint32(f.Y))
		binary.BigEndian.PutUint16(fctl[20:22], f.DelayNum)
		binary.BigEndian.PutUint16(fctl[22:24], f.DelayDen)
		fctl[24] = f.Dispose
		fctl[25] = f.Blend
		writeChunk(&out, "fcTL", fctl)
		seq++

		for _, data := range chunks["IDAT"] {
			if i == 0 {
				writeChunk(&out, "IDAT", data)
				continue
			}
			fdat := make([]byte, 4, 4+len(data))
			binary.BigEndian.PutUint32(fdat, seq)
			writeChunk(&out, "fdAT", append(fdat, data...))
			seq++
		}
	}
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func pngChunks(data []byte) map[string][][]byte {
	chunks := make(map[string][][]byte)
	p := data[8:]
	for len(p) >= 12 {
		n := binary.BigEndian.Uint32(p[:4])
		typ := string(p[4:8])
		chunks[typ] = append(chunks[typ], p[8:8+n])
		p = p[12+n:]
	}
	return chunks
}

func writeChunk(w *bytes.Buffer, typ string, data []byte) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	w.Write(hdr[:])
	w.Write(data)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.Write(sum[:])
}
