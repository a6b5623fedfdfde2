package covers

import (
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCover is used when the catalog is empty or missing.
const DefaultCover = "/covers/default.png"

type manifest struct {
	Covers []string `yaml:"covers"`
}

// Picker chooses a cover image for a new interview. The choice is uniform
// and non-cryptographic; it is independent of the interview record.
type Picker struct {
	mu     sync.Mutex
	images []string
	rng    *rand.Rand
}

// NewPicker creates a picker over the given image paths with the provided
// random source. Pass nil to use a time-seeded source.
func NewPicker(images []string, rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{images: images, rng: rng}
}

// LoadManifest reads a YAML cover catalog and returns a picker over it.
func LoadManifest(path string) (*Picker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read covers manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse covers manifest: %w", err)
	}

	return NewPicker(m.Covers, nil), nil
}

// Pick returns a random cover path, or DefaultCover for an empty catalog.
func (p *Picker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.images) == 0 {
		return DefaultCover
	}
	return p.images[p.rng.Intn(len(p.images))]
}

// Len returns the catalog size.
func (p *Picker) Len() int {
	return len(p.images)
}
