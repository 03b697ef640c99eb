package streamsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rzbill/flume/internal/runtime"
	"github.com/rzbill/flume/internal/stream"
	logpkg "github.com/rzbill/flume/pkg/log"
	"github.com/rzbill/flume/pkg/streamid"
)

// ErrStreamNotFound reports a write with NoMkStream against an absent stream.
var ErrStreamNotFound = errors.New("stream not found")

// filterScanBatch bounds how many entries a filtered range scan pulls from
// storage per iteration.
const filterScanBatch = 256

// Service provides the stream command surface on top of the runtime.
type Service struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// New returns a Service using a default logger.
func New(rt *runtime.Runtime) *Service {
	return NewWithLogger(rt, nil)
}

// NewWithLogger constructs the service with an injected logger.
func NewWithLogger(rt *runtime.Runtime, logger logpkg.Logger) *Service {
	if logger == nil {
		logger = logpkg.NewLogger().With(logpkg.Component("streams"))
	}
	return &Service{rt: rt, logger: logger}
}

func (s *Service) namespace(ns string) string {
	if ns == "" {
		return s.rt.Config().DefaultNamespaceName
	}
	return ns
}

// parseAddOptions resolves the textual insertion target. "*" (or empty)
// requests full auto-assignment; everything else goes through the ID parser.
func parseAddOptions(text string) (stream.AddOptions, error) {
	if text == "" || text == "*" {
		return stream.AddOptions{Auto: true}, nil
	}
	req, err := streamid.ParseNew(text)
	if err != nil {
		return stream.AddOptions{}, err
	}
	return stream.AddOptions{ID: req}, nil
}

// parseRangeBound resolves one textual range boundary. end selects the
// defaulting for the bare-millisecond form.
func parseRangeBound(text string, end bool) (id streamid.EntryID, exclusive bool, err error) {
	if strings.HasPrefix(text, "(") {
		exclusive = true
		text = text[1:]
	}
	switch text {
	case "-":
		return streamid.Min(), exclusive, nil
	case "+":
		return streamid.Max(), exclusive, nil
	}
	if end {
		id, err = streamid.ParseRangeEnd(text)
	} else {
		id, err = streamid.ParseRangeStart(text)
	}
	return id, exclusive, err
}

// Add validates and inserts one entry, returning its final ID.
func (s *Service) Add(ctx context.Context, req AddRequest) (streamid.EntryID, error) {
	ns := s.namespace(req.Namespace)
	if len(req.Fields) == 0 {
		return streamid.EntryID{}, errors.New("wrong number of arguments for stream add")
	}
	if max := s.rt.Config().StreamDefaults.FieldMaxBytes; max > 0 {
		for _, f := range req.Fields {
			if len(f) > max {
				return streamid.EntryID{}, fmt.Errorf("field exceeds %d bytes", max)
			}
		}
	}
	opts, err := parseAddOptions(req.ID)
	if err != nil {
		return streamid.EntryID{}, err
	}

	st, err := s.rt.OpenStream(ns, req.Stream)
	if err != nil {
		return streamid.EntryID{}, err
	}
	if !st.Exists() {
		if req.NoMkStream {
			return streamid.EntryID{}, ErrStreamNotFound
		}
		if !s.rt.Config().AllowAutoCreateStreams {
			return streamid.EntryID{}, ErrStreamNotFound
		}
		if _, err := s.rt.EnsureNamespace(ns); err != nil {
			return streamid.EntryID{}, err
		}
	}

	id, err := st.Add(ctx, opts, req.Fields)
	if err != nil {
		return streamid.EntryID{}, err
	}
	s.logger.Debug("entry added",
		logpkg.Str("ns", ns),
		logpkg.Str("stream", req.Stream),
		logpkg.Str("id", id.String()),
	)
	return id, nil
}

// Range scans entries between textual boundaries, applying the optional CEL
// filter and the configured count cap.
func (s *Service) Range(ctx context.Context, req RangeRequest) ([]stream.Entry, error) {
	ns := s.namespace(req.Namespace)
	start, exclStart, err := parseRangeBound(req.Start, false)
	if err != nil {
		return nil, err
	}
	end, exclEnd, err := parseRangeBound(req.End, true)
	if err != nil {
		return nil, err
	}
	filter, err := newCELFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if maxCount := uint64(s.rt.Config().StreamDefaults.RangeMaxCount); maxCount > 0 && (count == 0 || count > maxCount) {
		count = maxCount
	}

	st, err := s.rt.OpenStream(ns, req.Stream)
	if err != nil {
		return nil, err
	}
	opts := stream.RangeOptions{
		Start:        start,
		End:          end,
		ExcludeStart: exclStart,
		ExcludeEnd:   exclEnd,
		Reverse:      req.Reverse,
	}
	if !filter.enabled {
		opts.Count = count
		return st.Range(ctx, opts)
	}

	// With a filter the scan walks the range in bounded batches; the cap
	// applies to entries the filter keeps, not to the entries examined.
	opts.Count = filterScanBatch
	kept := make([]stream.Entry, 0, 16)
	for {
		batch, err := st.Range(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, e := range batch {
			if !filter.Eval(e) {
				continue
			}
			kept = append(kept, e)
			if count > 0 && uint64(len(kept)) >= count {
				return kept, nil
			}
		}
		if uint64(len(batch)) < filterScanBatch {
			return kept, nil
		}
		lastID := batch[len(batch)-1].ID
		if req.Reverse {
			opts.End, opts.ExcludeEnd = lastID, true
		} else {
			opts.Start, opts.ExcludeStart = lastID, true
		}
	}
}

// Len returns the number of live entries; absent streams have length 0.
func (s *Service) Len(ctx context.Context, nsName, name string) (uint64, error) {
	st, err := s.rt.OpenStream(s.namespace(nsName), name)
	if err != nil {
		return 0, err
	}
	return st.Len(), nil
}

// Delete removes entries by textual ID, returning how many existed.
func (s *Service) Delete(ctx context.Context, nsName, name string, ids []string) (uint64, error) {
	parsed := make([]streamid.EntryID, 0, len(ids))
	for _, text := range ids {
		id, err := streamid.Parse(text)
		if err != nil {
			return 0, err
		}
		parsed = append(parsed, id)
	}
	st, err := s.rt.OpenStream(s.namespace(nsName), name)
	if err != nil {
		return 0, err
	}
	return st.Delete(ctx, parsed)
}

// Trim drops entries per the requested strategy, returning how many were
// removed.
func (s *Service) Trim(ctx context.Context, req TrimRequest) (uint64, error) {
	opts := stream.TrimOptions{Strategy: req.Strategy, MaxLen: req.MaxLen}
	if req.Strategy == stream.TrimMinID {
		id, err := streamid.Parse(req.MinID)
		if err != nil {
			return 0, err
		}
		opts.MinID = id
	}
	st, err := s.rt.OpenStream(s.namespace(req.Namespace), req.Stream)
	if err != nil {
		return 0, err
	}
	removed, err := st.Trim(ctx, opts)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Debug("stream trimmed",
			logpkg.Str("stream", req.Stream),
			logpkg.Uint64("removed", removed),
		)
	}
	return removed, nil
}

// SetID forces the stream's last generated ID forward.
func (s *Service) SetID(ctx context.Context, nsName, name, idText string) error {
	id, err := streamid.Parse(idText)
	if err != nil {
		return err
	}
	st, err := s.rt.OpenStream(s.namespace(nsName), name)
	if err != nil {
		return err
	}
	return st.SetID(ctx, id)
}

// Info summarizes a stream, including its first and last stored entries.
func (s *Service) Info(ctx context.Context, nsName, name string) (Info, error) {
	st, err := s.rt.OpenStream(s.namespace(nsName), name)
	if err != nil {
		return Info{}, err
	}
	if !st.Exists() {
		return Info{}, ErrStreamNotFound
	}
	meta := st.Meta()
	info := Info{
		Name:         name,
		Length:       meta.Size,
		LastID:       meta.LastID(),
		MaxDeletedID: meta.MaxDeletedID(),
		EntriesAdded: meta.EntriesAdded,
		CreatedAtMs:  meta.CreatedAtMs,
	}
	first, err := st.Range(ctx, stream.RangeOptions{Start: streamid.Min(), End: streamid.Max(), Count: 1})
	if err != nil {
		return Info{}, err
	}
	if len(first) == 1 {
		id := first[0].ID
		info.FirstEntryID = &id
	}
	last, err := st.Range(ctx, stream.RangeOptions{Start: streamid.Min(), End: streamid.Max(), Count: 1, Reverse: true})
	if err != nil {
		return Info{}, err
	}
	if len(last) == 1 {
		id := last[0].ID
		info.LastEntryID = &id
	}
	return info, nil
}
