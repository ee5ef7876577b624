// Package notice orchestrates the lien compliance core for the delivery
// surfaces: deadline projection, eligibility, NOI timing, letter
// composition, PDF rendering with cache and storage, collection sequences
// and the lien status export.
package notice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/LienPilot/internal/application/document"
	"github.com/turtacn/LienPilot/internal/application/letter"
	"github.com/turtacn/LienPilot/internal/application/report"
	"github.com/turtacn/LienPilot/internal/application/sequence"
	"github.com/turtacn/LienPilot/internal/domain/lien"
	"github.com/turtacn/LienPilot/internal/domain/noi"
	"github.com/turtacn/LienPilot/internal/infrastructure/database/redis"
	"github.com/turtacn/LienPilot/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LienPilot/internal/infrastructure/storage/minio"
	"github.com/turtacn/LienPilot/pkg/errors"
	"github.com/turtacn/LienPilot/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// ObjectStore is one bucket of the object store.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte, metadata map[string]string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	URL(ctx context.Context, key string) (string, error)
}

// EventPublisher publishes enveloped domain events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key, eventType, source string, payload interface{}) (string, error)
}

// DocumentCache caches rendered documents. Get reports a miss with a
// not-found error.
type DocumentCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// InvoiceSource lists invoices for the status export.
type InvoiceSource interface {
	ListOpenInvoices(ctx context.Context, f report.InvoiceFilter) ([]report.InvoiceRecord, error)
}

// Locker serializes work on a named resource across processes.
type Locker interface {
	Acquire(ctx context.Context, name string) (func(context.Context) error, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Event types carried in the envelope.
const (
	EventNoticeRendered     = "noi.rendered"
	EventSequenceGenerated  = "sequence.generated"
	EventExportCompleted    = "export.completed"
	EventNoticeRequested    = "noi.requested"
	DefaultEventSource      = "lienpilot"
	DefaultMaxBatchParallel = 8
)

// Service is the application surface shared by the CLI, the HTTP API and
// the worker.
type Service interface {
	States() []StateInfo
	Deadline(ctx context.Context, req *DeadlineRequest) (*lien.LienCase, error)
	DeadlineBatch(ctx context.Context, reqs []DeadlineRequest) ([]lien.LienCase, error)
	Eligibility(ctx context.Context, req *EligibilityRequest) (*EligibilityResult, error)
	Advise(ctx context.Context, req *AdviceRequest) (*AdviceResult, error)
	ComposeLetter(ctx context.Context, req *NoticeRequest) (*LetterResult, error)
	RenderDocument(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	GenerateSequence(ctx context.Context, in *sequence.Input) (*sequence.Sequence, error)
	Export(ctx context.Context, req *ExportRequest) (*ExportResult, error)
}

// Deps wires the service. Rules and Logger are the only fields with
// meaningful zero-value fallbacks; every infrastructure port is optional.
type Deps struct {
	Rules    *lien.RuleTable
	Policy   *noi.Policy
	Letters  *letter.Registry
	Renderer *document.Renderer

	Notices  ObjectStore
	Exports  ObjectStore
	Cache    DocumentCache
	Events   EventPublisher
	Invoices InvoiceSource
	Locker   Locker

	Metrics *prometheus.AppMetrics
	Logger  logging.Logger
	Clock   func() time.Time

	// Source names the publishing process in event envelopes.
	Source        string
	CacheTTL      time.Duration
	BatchParallel int
}

type service struct {
	Deps
	calc      *lien.Calculator
	advisor   *noi.Advisor
	sequences *sequence.Generator
	logger    logging.Logger
}

// NewService fills unset collaborators with the built-in defaults.
func NewService(d Deps) Service {
	return newService(d)
}

func newService(d Deps) *service {
	if d.Rules == nil {
		d.Rules = lien.DefaultRuleTable()
	}
	if d.Policy == nil {
		d.Policy = noi.DefaultPolicy()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Letters == nil {
		d.Letters = letter.NewRegistry(letter.WithClock(d.Clock))
	}
	if d.Renderer == nil {
		d.Renderer = document.NewRenderer(document.DefaultOptions())
	}
	if d.Source == "" {
		d.Source = DefaultEventSource
	}
	if d.BatchParallel <= 0 {
		d.BatchParallel = DefaultMaxBatchParallel
	}
	return &service{
		Deps:      d,
		calc:      lien.NewCalculator(d.Rules, lien.WithClock(d.Clock)),
		advisor:   noi.NewAdvisor(d.Rules, d.Policy),
		sequences: sequence.NewGenerator(d.Rules),
		logger:    logging.ForComponent(d.Logger, "notice"),
	}
}

func (s *service) today() time.Time { return common.DateOnly(s.Clock()) }

func (s *service) States() []StateInfo {
	codes := append(s.Rules.States(), lien.DefaultStateKey)
	out := make([]StateInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, StateInfo{
			Code:     code,
			Name:     lien.StateName(code),
			Rule:     s.Rules.Rule(code),
			Composer: s.Letters.For(code).Name(),
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Deadlines and eligibility
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Deadline(_ context.Context, req *DeadlineRequest) (*lien.LienCase, error) {
	if req == nil {
		return nil, errors.InvalidParam("deadline request is required")
	}
	first, err := parseDate("first_work_date", req.FirstWorkDate)
	if err != nil {
		return nil, err
	}
	last, err := parseDate("last_work_date", req.LastWorkDate)
	if err != nil {
		return nil, err
	}
	if first != nil && last != nil && last.Before(*first) {
		return nil, errors.New(errors.ErrCodeLienInvalidDate, "last work date precedes first work date").
			WithDetail(req.FirstWorkDate + " > " + req.LastWorkDate)
	}
	asOf, err := asOfOr(req.AsOf, s.Clock())
	if err != nil {
		return nil, err
	}

	lc := s.calc.CalculateAt(req.State, first, last, asOf)
	prometheus.RecordDeadline(s.Metrics, lc.RuleKey, string(lc.WarningLevel))
	return &lc, nil
}

// DeadlineBatch evaluates requests concurrently; the first invalid request
// fails the batch. Results keep input order.
func (s *service) DeadlineBatch(ctx context.Context, reqs []DeadlineRequest) ([]lien.LienCase, error) {
	out := make([]lien.LienCase, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.BatchParallel)
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lc, err := s.Deadline(gctx, &reqs[i])
			if err != nil {
				return errors.Wrap(err, errors.GetCode(err), "batch item failed").WithDetail(fmt.Sprintf("index=%d", i))
			}
			out[i] = *lc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Eligibility(_ context.Context, req *EligibilityRequest) (*EligibilityResult, error) {
	if req == nil {
		return nil, errors.InvalidParam("eligibility request is required")
	}
	in := lien.EligibilityInput{
		HasPropertyAddress: req.HasPropertyAddress,
		State:              req.State,
		WorkDescription:    req.WorkDescription,
	}
	res := &EligibilityResult{Eligible: lien.IsEligible(in)}
	switch {
	case !req.HasPropertyAddress:
		res.Reason = "No property address on the invoice."
	case req.State == nil || strings.TrimSpace(*req.State) == "":
		res.Reason = "No property state on the invoice."
	case req.WorkDescription == nil || strings.TrimSpace(*req.WorkDescription) == "":
		res.Reason = "No work description; eligible pending manual review."
	case res.Eligible:
		res.Reason = "Work description names a property improvement."
	default:
		res.Reason = "Work description does not name a property improvement."
	}

	state := ""
	if req.State != nil {
		state = s.Rules.Normalize(*req.State)
	}
	prometheus.RecordEligibility(s.Metrics, state, res.Eligible)
	return res, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// NOI timing and letters
// ─────────────────────────────────────────────────────────────────────────────

func (s *service) Advise(_ context.Context, req *AdviceRequest) (*AdviceResult, error) {
	if req == nil {
		return nil, errors.InvalidParam("advice request is required")
	}
	first, err := parseDate("first_work_date", req.FirstWorkDate)
	if err != nil {
		return nil, err
	}
	last, err := parseDate("last_work_date", req.LastWorkDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate("invoice_due_date", req.InvoiceDueDate)
	if err != nil {
		return nil, err
	}
	asOf, err := asOfOr(req.AsOf, s.Clock())
	if err != nil {
		return nil, err
	}

	calc, err := s.advisor.Calculate(noi.Input{
		State:          req.State,
		Role:           noi.ClaimantRole(req.Role),
		FirstWorkDate:  first,
		LastWorkDate:   derefDate(last),
		InvoiceDueDate: derefDate(due),
	})
	if err != nil {
		return nil, err
	}
	dec := s.advisor.ShouldSendNow(calc, asOf)
	prometheus.RecordNOIDecision(s.Metrics, string(dec.Urgency), dec.ShouldSend)
	return &AdviceResult{Calculation: calc, Decision: dec, AsOf: asOf}, nil
}

// resolveNotice parses req and derives blank deadlines from the same rule
// table the calculator uses.
func (s *service) resolveNotice(req *NoticeRequest) (*letter.NoticeData, error) {
	data, err := req.noticeData()
	if err != nil {
		return nil, err
	}
	if data.NoticeDate.IsZero() {
		data.NoticeDate = s.today()
	}
	if data.LienFilingDeadline.IsZero() && data.WorkEndDate != nil {
		data.LienFilingDeadline = s.calc.FilingDeadline(req.State, *data.WorkEndDate)
	}
	if data.ResponseDeadline.IsZero() {
		data.ResponseDeadline = s.advisor.ResponseDeadline(data.NoticeDate, req.State)
	}
	return data, nil
}

func (s *service) compose(req *NoticeRequest) (*letter.NoticeData, *letter.Composition, error) {
	if req == nil {
		return nil, nil, errors.New(errors.ErrCodeLetterInvalidData, "notice request is required")
	}
	data, err := s.resolveNotice(req)
	if err != nil {
		return nil, nil, err
	}
	comp, err := s.Letters.Compose(req.State, data)
	if err != nil {
		return nil, nil, err
	}
	prometheus.RecordLetter(s.Metrics, s.Rules.Normalize(req.State))
	return data, comp, nil
}

func (s *service) ComposeLetter(_ context.Context, req *NoticeRequest) (*LetterResult, error) {
	data, comp, err := s.compose(req)
	if err != nil {
		return nil, err
	}
	return &LetterResult{
		State:              s.Rules.Normalize(req.State),
		Composer:           comp.Composer,
		Text:               comp.Text,
		ResponseDeadline:   data.ResponseDeadline,
		LienFilingDeadline: data.LienFilingDeadline,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

// cachedDocument is the cache representation of a rendered notice.
type cachedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	PageCount   int    `json:"page_count"`
	Composer    string `json:"composer"`
	Data        []byte `json:"data"`
}

// documentKey digests everything that affects the PDF bytes.
func documentKey(text string, data *letter.NoticeData, opts document.Options) string {
	o, _ := json.Marshal(opts)
	c, _ := json.Marshal(data.Contractor)
	return redis.ContentKey(text, string(c), data.InvoiceNumber, data.Customer.Name,
		data.PropertyAddress, common.FormatDate(data.NoticeDate), string(o))
}

func (s *service) RenderDocument(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeLetterInvalidData, "render request is required")
	}
	data, comp, err := s.compose(&req.Notice)
	if err != nil {
		return nil, err
	}
	opts := req.Options.Apply(s.Renderer.Defaults())
	key := documentKey(comp.Text, data, opts)

	res, err := s.renderCached(ctx, key, comp, data, &opts)
	if err != nil {
		return nil, err
	}
	if req.Store {
		if err := s.storeNotice(ctx, req.Notice.State, data, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *service) renderCached(ctx context.Context, key string, comp *letter.Composition, data *letter.NoticeData, opts *document.Options) (*RenderResult, error) {
	if s.Cache != nil {
		var hit cachedDocument
		err := s.Cache.Get(ctx, key, &hit)
		if err == nil {
			prometheus.RecordRender(s.Metrics, "cache", 0, len(hit.Data), hit.PageCount, nil)
			return &RenderResult{
				Filename:    hit.Filename,
				ContentType: hit.ContentType,
				Size:        len(hit.Data),
				PageCount:   hit.PageCount,
				Composer:    hit.Composer,
				Cached:      true,
				Data:        hit.Data,
			}, nil
		}
		if !errors.IsNotFound(err) {
			s.logger.Warn("document cache read failed", logging.Err(err))
		}
	}

	start := time.Now()
	doc, err := s.Renderer.Render(comp.Text, data, opts)
	prometheus.RecordRender(s.Metrics, "render", time.Since(start), sizeOf(doc), pagesOf(doc), err)
	if err != nil {
		return nil, err
	}
	res := &RenderResult{
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size(),
		PageCount:   doc.PageCount(),
		Composer:    comp.Composer,
		Data:        doc.Bytes(),
	}
	if s.Cache != nil {
		entry := cachedDocument{Filename: res.Filename, ContentType: res.ContentType, PageCount: res.PageCount, Composer: res.Composer, Data: res.Data}
		if err := s.Cache.Set(ctx, key, entry, s.CacheTTL); err != nil {
			s.logger.Warn("document cache write failed", logging.String(logging.KeyInvoice, data.InvoiceNumber), logging.Err(err))
		}
	}
	return res, nil
}

func sizeOf(d *document.Document) int {
	if d == nil {
		return 0
	}
	return d.Size()
}

func pagesOf(d *document.Document) int {
	if d == nil {
		return 0
	}
	return d.PageCount()
}

// NoticeRenderedEvent is published after a notice is stored.
type NoticeRenderedEvent struct {
	InvoiceNumber string    `json:"invoice_number"`
	State         string    `json:"state"`
	Composer      string    `json:"composer"`
	Filename      string    `json:"filename"`
	ObjectKey     string    `json:"object_key"`
	URL           string    `json:"url,omitempty"`
	Size          int       `json:"size"`
	PageCount     int       `json:"page_count"`
	NoticeDate    time.Time `json:"notice_date"`
}

func (s *service) storeNotice(ctx context.Context, state string, data *letter.NoticeData, res *RenderResult) error {
	if s.Notices == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "notice storage is not configured")
	}
	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, "render:"+data.InvoiceNumber)
		if err != nil {
			return err
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.logger.Warn("release render lock", logging.Err(err))
			}
		}()
	}

	objectKey := minio.NoticeKey(s.Rules.Normalize(state), res.Filename)
	_, err := s.Notices.Put(ctx, objectKey, res.ContentType, res.Data, map[string]string{
		"invoice-number": data.InvoiceNumber,
		"composer":       res.Composer,
	})
	prometheus.RecordStorageOp(s.Metrics, "put_notice", err)
	if err != nil {
		return err
	}
	res.ObjectKey = objectKey
	if url, err := s.Notices.URL(ctx, objectKey); err != nil {
		s.logger.Warn("presign notice url failed", logging.String(logging.KeyObject, objectKey), logging.Err(err))
	} else {
		res.URL = url
	}

	s.publish(ctx, kafka.TopicNOIRendered, data.InvoiceNumber, EventNoticeRendered, NoticeRenderedEvent{
		InvoiceNumber: data.InvoiceNumber,
		State:         s.Rules.Normalize(state),
		Composer:      res.Composer,
		Filename:      res.Filename,
		ObjectKey:     objectKey,
		URL:           res.URL,
		Size:          res.Size,
		PageCount:     res.PageCount,
		NoticeDate:    data.NoticeDate,
	})
	s.logger.Info("notice stored",
		logging.String(logging.KeyInvoice, data.InvoiceNumber),
		logging.String(logging.KeyObject, objectKey),
		logging.Int("size", res.Size))
	return nil
}

// publish hands an event off without failing the caller.
func (s *service) publish(ctx context.Context, topic, key, eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	id, err := s.Events.PublishEvent(ctx, topic, key, eventType, s.Source, payload)
	prometheus.RecordPublish(s.Metrics, topic, err)
	if err != nil {
		s.logger.Warn("event publish failed", logging.String(logging.KeyTopic, topic), logging.Err(err))
		return
	}
	s.logger.Debug("event published", logging.String(logging.KeyTopic, topic), logging.String(logging.KeyEventID, id))
}

// ─────────────────────────────────────────────────────────────────────────────
// Sequences
// ─────────────────────────────────────────────────────────────────────────────

// SequenceGeneratedEvent is published for every generated sequence.
type SequenceGeneratedEvent struct {
	Sequence *sequence.Sequence `json:"sequence"`
}

func (s *service) GenerateSequence(ctx context.Context, in *sequence.Input) (*sequence.Sequence, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeSequenceInvalidInput, "sequence input is required")
	}
	seq, err := s.sequences.Generate(*in)
	if err != nil {
		return nil, err
	}
	prometheus.RecordSequence(s.Metrics, string(seq.Tone))
	s.publish(ctx, kafka.TopicSequenceGenerated, in.BusinessName, EventSequenceGenerated, SequenceGeneratedEvent{Sequence: seq})
	return seq, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Export
// ─────────────────────────────────────────────────────────────────────────────

// ExportCompletedEvent is published after a stored export.
type ExportCompletedEvent struct {
	AsOf      time.Time      `json:"as_of"`
	ObjectKey string         `json:"object_key"`
	URL       string         `json:"url,omitempty"`
	Summary   report.Summary `json:"summary"`
}

func (s *service) Export(ctx context.Context, req *ExportRequest) (*ExportResult, error) {
	if req == nil {
		req = &ExportRequest{}
	}
	asOf, err := asOfOr(req.AsOf, s.Clock())
	if err != nil {
		return nil, err
	}
	records := req.Records
	if len(records) == 0 {
		if s.Invoices == nil {
			return nil, errors.InvalidParam("no records supplied and no invoice source configured")
		}
		records, err = s.Invoices.ListOpenInvoices(ctx, req.Filter)
		if err != nil {
			return nil, err
		}
	}

	rep := report.Build(records, s.calc, asOf)
	for _, row := range rep.Rows {
		prometheus.RecordDeadline(s.Metrics, row.Case.RuleKey, string(row.Case.WarningLevel))
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep.Rows); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "write export csv")
	}
	res := &ExportResult{Report: rep, Summary: rep.Summary, AsOf: rep.AsOf, CSV: buf.Bytes()}

	if req.Store {
		if err := s.storeExport(ctx, res); err != nil {
			return nil, err
		}
	}
	s.logger.Info("lien status exported",
		logging.Int("rows", len(rep.Rows)),
		logging.Int("red", rep.Summary.Red),
		logging.Bool("stored", req.Store))
	return res, nil
}

func (s *service) storeExport(ctx context.Context, res *ExportResult) error {
	if s.Exports == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "export storage is not configured")
	}
	key := minio.ExportKey(res.AsOf)
	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, "export:"+common.FormatDate(res.AsOf))
		if err != nil {
			return err
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.logger.Warn("release export lock", logging.Err(err))
			}
		}()
	}
	_, err := s.Exports.Put(ctx, key, "text/csv", res.CSV, map[string]string{"as-of": common.FormatDate(res.AsOf)})
	prometheus.RecordStorageOp(s.Metrics, "put_export", err)
	if err != nil {
		return err
	}
	res.ObjectKey = key
	if url, err := s.Exports.URL(ctx, key); err == nil {
		res.URL = url
	} else {
		s.logger.Warn("presign export url failed", logging.String(logging.KeyObject, key), logging.Err(err))
	}
	s.publish(ctx, kafka.TopicExportCompleted, common.FormatDate(res.AsOf), EventExportCompleted, ExportCompletedEvent{
		AsOf: res.AsOf, ObjectKey: key, URL: res.URL, Summary: res.Summary,
	})
	return nil
}

//Personal.AI order the ending
