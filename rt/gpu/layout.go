package gpu

import (
	"fmt"

	"github.com/gekko3d/pointsync/rt/core"

	"github.com/cogentcore/webgpu/wgpu"
)

func vertexFormat(itemSize int, integer bool) (wgpu.VertexFormat, error) {
	if integer {
		switch itemSize {
		case 1:
			return wgpu.VertexFormatUint32, nil
		case 2:
			return wgpu.VertexFormatUint32x2, nil
		case 3:
			return wgpu.VertexFormatUint32x3, nil
		case 4:
			return wgpu.VertexFormatUint32x4, nil
		}
	} else {
		switch itemSize {
		case 1:
			return wgpu.VertexFormatFloat32, nil
		case 2:
			return wgpu.VertexFormatFloat32x2, nil
		case 3:
			return wgpu.VertexFormatFloat32x3, nil
		case 4:
			return wgpu.VertexFormatFloat32x4, nil
		}
	}
	return 0, fmt.Errorf("unsupported vertex item size %d", itemSize)
}

// VertexLayouts describes attrs as per-instance vertex buffers, one buffer per
// attribute, with shader locations assigned in order from firstLocation.
func VertexLayouts(attrs []core.Attribute, firstLocation uint32) ([]wgpu.VertexBufferLayout, error) {
	layouts := make([]wgpu.VertexBufferLayout, 0, len(attrs))
	location := firstLocation
	for _, attr := range attrs {
		elem := uint64(attr.ElementBytes())
		var vas []wgpu.VertexAttribute
		for _, f := range attr.Fields() {
			format, err := vertexFormat(f.ItemSize, f.Integer)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", attr.Label(), f.Name, err)
			}
			vas = append(vas, wgpu.VertexAttribute{
				ShaderLocation: location,
				Offset:         uint64(f.Offset) * elem,
				Format:         format,
			})
			location++
		}
		layouts = append(layouts, wgpu.VertexBufferLayout{
			ArrayStride: uint64(attr.ItemSize()) * elem,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes:  vas,
		})
	}
	return layouts, nil
}
