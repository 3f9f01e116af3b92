package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareImagesAndMeshes(t *testing.T) {
	requests := []Request{
		ImageRequest("checker", encodePNG(t, 4, 2)),
		MeshRequest("cube", func() (mesh.Mesh, error) { return mesh.Cube(1), nil }),
	}
	for i := 0; i < 8; i++ {
		requests = append(requests, MeshRequest(fmt.Sprintf("sphere-%d", i), func() (mesh.Mesh, error) {
			return mesh.Sphere(4+i, 6, 1), nil
		}))
	}

	b, err := NewPreparer(WithWorkers(3)).Prepare(requests...)
	require.NoError(t, err)

	img, ok := b.Image("checker")
	require.True(t, ok)
	assert.Equal(t, uint32(4), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Len(t, img.Pixels, 4*2*4)

	cube, ok := b.Mesh("cube")
	require.True(t, ok)
	assert.Equal(t, 36, cube.IndexCount())

	s, ok := b.Mesh("sphere-5")
	require.True(t, ok)
	assert.Equal(t, 9*6*6, s.IndexCount())

	assert.Len(t, b.Labels(), 10)
	assert.Equal(t, "checker", b.Labels()[0])

	_, ok = b.Mesh("checker")
	assert.False(t, ok, "images and meshes are separate")
}

func TestPrepareNoRequests(t *testing.T) {
	b, err := Prepare()
	require.NoError(t, err)
	assert.Empty(t, b.Labels())
}

func TestPrepareDecodeFailure(t *testing.T) {
	_, err := Prepare(
		MeshRequest("triangle", func() (mesh.Mesh, error) { return mesh.Triangle(), nil }),
		ImageRequest("broken", []byte("not a png")),
	)
	require.Error(t, err)

	var se *common.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, common.SetupStageImage, se.Stage)
	assert.Equal(t, "broken", se.Label)

	var de *common.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestPrepareMeshFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Prepare(MeshRequest("bad", func() (mesh.Mesh, error) { return nil, boom }))

	var se *common.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, common.SetupStageMesh, se.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestPrepareRejectsBadLabels(t *testing.T) {
	tri := func() (mesh.Mesh, error) { return mesh.Triangle(), nil }

	_, err := Prepare(MeshRequest("", tri))
	assert.ErrorIs(t, err, errEmptyLabel)

	_, err = Prepare(MeshRequest("a", tri), MeshRequest("a", tri))
	assert.ErrorIs(t, err, errDuplicateLabel)

	_, err = Prepare(MeshRequest("nil", nil))
	assert.ErrorIs(t, err, errNoBuilder)
}

func TestPrepareRejectsMissingMesh(t *testing.T) {
	_, err := Prepare(MeshRequest("empty", func() (mesh.Mesh, error) { return nil, nil }))
	assert.ErrorIs(t, err, errNoMesh)

	var se *common.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, common.SetupStageMesh, se.Stage)
	assert.Equal(t, "empty", se.Label)
}

func TestGLTFFileRequest(t *testing.T) {
	_, err := Prepare(GLTFFileRequest("missing", filepath.Join(t.TempDir(), "nope.gltf")))
	var se *common.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "missing", se.Label)

	path := filepath.Join(t.TempDir(), "tri.gltf")
	require.NoError(t, os.WriteFile(path, []byte(triangleGLTF), 0o600))

	b, err := Prepare(GLTFFileRequest("tri", path))
	require.NoError(t, err)
	m, ok := b.Mesh("tri")
	require.True(t, ok)
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.IndexCount())
}

func TestRequestKindString(t *testing.T) {
	assert.Equal(t, "image", RequestKindImage.String())
	assert.Equal(t, "mesh", RequestKindMesh.String())
	assert.Equal(t, "unknown", RequestKind(9).String())
}

const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": 44, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAA="}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "meshes": [{"name": "corner", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}]
}`
