package relib

import "context"

// digestSink is a throwaway Backend that discards every byte written to
// it. It exists so RefreshMetadata can drive Table.WriteTo purely to learn
// the checksum of what *would* be written, without needing a real backend
// (memory, file, s3, ...) in scope.
type digestSink struct{}

func newDigestSink() *digestSink { return &digestSink{} }

func (d *digestSink) GetURL() string                                  { return "digest://" }
func (d *digestSink) StartSaving(ctx context.Context) error           { return nil }
func (d *digestSink) DoneSaving(ctx context.Context) error            { return nil }
func (d *digestSink) StartLoading(ctx context.Context) error          { return nil }
func (d *digestSink) DoneLoading(ctx context.Context) error           { return nil }
func (d *digestSink) SaveData(ctx context.Context, relativePath string, data []byte) error {
	return nil
}
func (d *digestSink) LoadData(ctx context.Context, relativePath string) ([]byte, error) {
	return nil, &TableError{Op: "load", Msg: "digest sink does not support reads"}
}
