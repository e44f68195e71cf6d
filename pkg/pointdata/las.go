package pointdata

import (
	"github.com/edaniels/lidario"
	"go.uber.org/multierr"
)

// WriteLAS writes points to a LAS file. With color set the RGB point
// format is used.
func WriteLAS(path string, points []Point, color bool) (err error) {
	lf, err := lidario.NewLasFile(path, "w")
	if err != nil {
		return
	}
	defer func() {
		cerr := lf.Close()
		err = multierr.Combine(err, cerr)
	}()

	pointFormatID := 0
	if color {
		pointFormatID = 2
	}
	if err = lf.AddHeader(lidario.LasHeader{
		PointFormatID: byte(pointFormatID),
	}); err != nil {
		return
	}

	for _, p := range points {
		pr0 := &lidario.PointRecord0{
			X:         p.Position.X,
			Y:         p.Position.Y,
			Z:         p.Position.Z,
			Intensity: p.Intensity,
			BitField: lidario.PointBitField{
				Value: (1) | (1 << 3),
			},
			PointSourceID: 1,
		}

		var lp lidario.LasPointer = pr0
		if color {
			lp = &lidario.PointRecord2{
				PointRecord0: pr0,
				RGB: &lidario.RgbData{
					Red:   p.R,
					Green: p.G,
					Blue:  p.B,
				},
			}
		}
		if err = lf.AddLasPoint(lp); err != nil {
			return
		}
	}
	return nil
}
