// Package assets prepares the CPU side of a program's resources before the render loop starts:
// PNG images are decoded into RGBA staging data and meshes are built or imported. Requests run
// concurrently on a bounded worker pool; the first failure aborts setup.
package assets

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-primer/common"
	"github.com/Carmen-Shannon/oxy-primer/engine/mesh"
)

// RequestKind says what a Request produces.
type RequestKind int

const (
	// RequestKindImage decodes an encoded PNG into texture staging data.
	RequestKindImage RequestKind = iota

	// RequestKindMesh builds or imports a mesh.
	RequestKindMesh
)

func (k RequestKind) String() string {
	switch k {
	case RequestKindImage:
		return "image"
	case RequestKindMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

var (
	errEmptyLabel     = errors.New("request label is empty")
	errDuplicateLabel = errors.New("duplicate request label")
	errNoBuilder      = errors.New("mesh request has no builder")
	errNoMesh         = errors.New("mesh builder returned no mesh")
)

// Request is a single resource to prepare. Build one with ImageRequest, MeshRequest or
// GLTFFileRequest.
type Request struct {
	Kind  RequestKind
	Label string

	image      []byte
	decodeOpts []common.DecodeOption
	build      func() (mesh.Mesh, error)
}

// ImageRequest asks for an encoded PNG to be decoded.
//
// Parameters:
//   - label: the unique label the result is stored under
//   - data: the encoded PNG bytes
//   - opts: row order overrides passed to common.DecodeImage
//
// Returns:
//   - Request: the image request
func ImageRequest(label string, data []byte, opts ...common.DecodeOption) Request {
	return Request{Kind: RequestKindImage, Label: label, image: data, decodeOpts: opts}
}

// MeshRequest asks for a mesh to be produced by build, for example one of the mesh package shapes.
//
// Parameters:
//   - label: the unique label the result is stored under
//   - build: the function producing the mesh
//
// Returns:
//   - Request: the mesh request
func MeshRequest(label string, build func() (mesh.Mesh, error)) Request {
	return Request{Kind: RequestKindMesh, Label: label, build: build}
}

// GLTFFileRequest asks for the first triangle primitive of a glTF file to be imported.
func GLTFFileRequest(label, path string, opts ...mesh.GLTFOption) Request {
	return MeshRequest(label, func() (mesh.Mesh, error) {
		return mesh.LoadGLTFFile(path, opts...)
	})
}

// Bundle holds the prepared resources keyed by request label.
type Bundle interface {
	// Image returns the decoded image stored under label.
	//
	// Parameters:
	//   - label: the request label
	//
	// Returns:
	//   - common.TextureStagingData: the decoded pixels
	//   - bool: false if no image was prepared under label
	Image(label string) (common.TextureStagingData, bool)

	// Mesh returns the mesh stored under label.
	//
	// Parameters:
	//   - label: the request label
	//
	// Returns:
	//   - mesh.Mesh: the mesh
	//   - bool: false if no mesh was prepared under label
	Mesh(label string) (mesh.Mesh, bool)

	// Labels returns every prepared label in sorted order.
	Labels() []string
}

// bundle is the implementation of the Bundle interface.
type bundle struct {
	mu     sync.Mutex
	images map[string]common.TextureStagingData
	meshes map[string]mesh.Mesh
}

var _ Bundle = &bundle{}

func newBundle() *bundle {
	return &bundle{
		images: make(map[string]common.TextureStagingData),
		meshes: make(map[string]mesh.Mesh),
	}
}

func (b *bundle) Image(label string) (common.TextureStagingData, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	img, ok := b.images[label]
	return img, ok
}

func (b *bundle) Mesh(label string) (mesh.Mesh, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.meshes[label]
	return m, ok
}

func (b *bundle) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	labels := make([]string, 0, len(b.images)+len(b.meshes))
	for l := range b.images {
		labels = append(labels, l)
	}
	for l := range b.meshes {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// preparer is the implementation of the Preparer interface.
type preparer struct {
	workers int
	queue   int
	idle    time.Duration
}

// Preparer runs requests on a worker pool.
type Preparer interface {
	// Prepare runs every request and waits for all of them.
	//
	// Parameters:
	//   - requests: the resources to prepare, labels must be unique and non-empty
	//
	// Returns:
	//   - Bundle: the prepared resources
	//   - error: a *common.SetupError for the first failed request in request order
	Prepare(requests ...Request) (Bundle, error)
}

var _ Preparer = &preparer{}

// NewPreparer creates a Preparer. By default it uses one worker per CPU.
//
// Parameters:
//   - options: functional options to configure the pool
//
// Returns:
//   - Preparer: the configured preparer
func NewPreparer(options ...PreparerBuilderOption) Preparer {
	p := &preparer{
		workers: runtime.NumCPU(),
		queue:   64,
		idle:    1 * time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Prepare runs requests with a default Preparer.
func Prepare(requests ...Request) (Bundle, error) {
	return NewPreparer().Prepare(requests...)
}

func (p *preparer) Prepare(requests ...Request) (Bundle, error) {
	b := newBundle()
	if len(requests) == 0 {
		return b, nil
	}

	seen := make(map[string]struct{}, len(requests))
	for _, req := range requests {
		if req.Label == "" {
			return nil, common.NewSetupError(stageFor(req.Kind), "", errEmptyLabel)
		}
		if _, dup := seen[req.Label]; dup {
			return nil, common.NewSetupError(stageFor(req.Kind), req.Label, errDuplicateLabel)
		}
		seen[req.Label] = struct{}{}
	}

	started := time.Now()
	pool := worker.NewDynamicWorkerPool(min(p.workers, len(requests)), p.queue, p.idle)

	// The pool's own wait blocks until workers idle out, so a WaitGroup is the barrier.
	errs := make([]error, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		idx, r := i, req
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				errs[idx] = b.run(r)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, common.NewSetupError(stageFor(requests[i].Kind), requests[i].Label, err)
		}
	}
	log.Printf("[Assets] prepared %d resources in %s", len(requests), time.Since(started).Round(time.Microsecond))
	return b, nil
}

// run executes a single request and stores its result.
func (b *bundle) run(r Request) error {
	switch r.Kind {
	case RequestKindImage:
		img, err := common.DecodeImage(r.image, r.decodeOpts...)
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.images[r.Label] = img
		b.mu.Unlock()
		return nil
	case RequestKindMesh:
		if r.build == nil {
			return errNoBuilder
		}
		m, err := r.build()
		if err != nil {
			return err
		}
		if m == nil {
			return errNoMesh
		}
		b.mu.Lock()
		b.meshes[r.Label] = m
		b.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("unknown request kind %d", r.Kind)
	}
}

func stageFor(k RequestKind) common.SetupStage {
	if k == RequestKindImage {
		return common.SetupStageImage
	}
	return common.SetupStageMesh
}
