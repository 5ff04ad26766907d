package promisedrive

import (
	"github.com/AntonStoeckl/hyperdrive-promise-go/drive"
)

// Checkout returns a new adapter around the raw drive's view at version.
func (d *Drive) Checkout(version uint64, opts *drive.CheckoutOptions) (*Drive, error) {
	raw, err := d.h.Checkout(version, opts)
	if err != nil {
		return nil, err
	}

	return Wrap(raw)
}

// CreateDiffStream streams the differences between this drive and other below prefix.
// other may be an adapter or a raw drive; adapters are unwrapped before delegating.
func (d *Drive) CreateDiffStream(other drive.Peer, prefix string, opts *drive.DiffOptions) (drive.DiffStream, error) {
	raw, err := unwrap(other)
	if err != nil {
		return nil, err
	}

	return d.h.CreateDiffStream(raw, prefix, opts)
}
