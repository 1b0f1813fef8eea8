package builder

import (
	"fmt"
	"time"

	"github.com/openweb3-io/nsigner/types"
)

// All possible builder arguments go in here, privately available.
// Then the public EventArgs can typecast and select which arguments are needed.
type builderOptions struct {
	createdAt *int64
	tags      *types.Tags
	now       *func() time.Time
}

type EventOptions interface {
	GetCreatedAt() (int64, bool)
	GetTags() (types.Tags, bool)
}

var _ EventOptions = &builderOptions{}

func get[T any](arg *T) (T, bool) {
	if arg == nil {
		var zero T
		return zero, false
	}
	return *arg, true
}

func (opts *builderOptions) GetCreatedAt() (int64, bool) { return get(opts.createdAt) }
func (opts *builderOptions) GetTags() (types.Tags, bool) { return get(opts.tags) }

func (opts *builderOptions) timestamp() int64 {
	if ts, ok := opts.GetCreatedAt(); ok {
		return ts
	}
	if now, ok := get(opts.now); ok {
		return now().Unix()
	}
	return time.Now().Unix()
}

type BuilderOption func(opts *builderOptions) error

func WithCreatedAt(ts int64) BuilderOption {
	return func(opts *builderOptions) error {
		if ts < 0 {
			return fmt.Errorf("created_at must not be negative")
		}
		opts.createdAt = &ts
		return nil
	}
}

// WithTags appends to any tags set by earlier options.
func WithTags(tags ...types.Tag) BuilderOption {
	return func(opts *builderOptions) error {
		for _, tag := range tags {
			if len(tag) == 0 {
				return fmt.Errorf("empty tag")
			}
		}
		existing, _ := opts.GetTags()
		merged := append(append(types.Tags{}, existing...), tags...)
		opts.tags = &merged
		return nil
	}
}

func WithClock(now func() time.Time) BuilderOption {
	return func(opts *builderOptions) error {
		opts.now = &now
		return nil
	}
}

type EventArgs struct {
	options builderOptions
	kind    types.Kind
	content string
}

func NewEventArgs(kind types.Kind, content string, options ...BuilderOption) (*EventArgs, error) {
	args := &EventArgs{
		kind:    kind,
		content: content,
	}
	for _, opt := range options {
		if err := opt(&args.options); err != nil {
			return args, err
		}
	}
	return args, nil
}

func (args *EventArgs) GetKind() types.Kind         { return args.kind }
func (args *EventArgs) GetContent() string          { return args.content }
func (args *EventArgs) GetCreatedAt() (int64, bool) { return args.options.GetCreatedAt() }
func (args *EventArgs) GetTags() (types.Tags, bool) { return args.options.GetTags() }
