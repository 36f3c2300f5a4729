package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
)

// DefaultCollection holds ledger entries keyed by entry ID
const DefaultCollection = "entries"

// maxWritesPerTransaction is the Firestore limit on writes in one commit
const maxWritesPerTransaction = 500

// Client wraps the Firestore client with ledger operations
type Client struct {
	Firestore  *firestore.Client
	projectID  string
	collection string
}

var _ store.Repository = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithCollection stores entries in name instead of DefaultCollection
func WithCollection(name string) Option {
	return func(c *Client) { c.collection = name }
}

// NewClient creates a new Firestore client. Credentials come from
// credentialsFile when set, otherwise Application Default Credentials.
// FIRESTORE_EMULATOR_HOST is honoured by the underlying SDK.
func NewClient(ctx context.Context, projectID, credentialsFile string, opts ...Option) (*Client, error) {
	conf := &firebase.Config{ProjectID: projectID}

	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	c := &Client{
		Firestore:  firestoreClient,
		projectID:  projectID,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the Firestore client
func (c *Client) Close() error {
	return c.Firestore.Close()
}

func (c *Client) entries() *firestore.CollectionRef {
	return c.Firestore.Collection(c.collection)
}

// entryDoc is the stored document shape. CreatedAt is a native timestamp so
// ordering happens server-side.
type entryDoc struct {
	ID          string    `firestore:"id"`
	Date        string    `firestore:"date"`
	Description string    `firestore:"description"`
	Amount      int64     `firestore:"amount"`
	Type        string    `firestore:"type"`
	CategoryID  string    `firestore:"categoryId"`
	Source      string    `firestore:"source"`
	Memo        string    `firestore:"memo"`
	Fingerprint string    `firestore:"fingerprint"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toDoc(e domain.Entry) entryDoc {
	return entryDoc{
		ID:          e.ID,
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Type:        string(e.Type),
		CategoryID:  e.CategoryID,
		Source:      e.Source,
		Memo:        e.Memo,
		Fingerprint: e.Fingerprint,
		CreatedAt:   e.CreatedAt,
	}
}

func (d entryDoc) entry() domain.Entry {
	return domain.Entry{
		ID:          d.ID,
		Date:        d.Date,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        domain.TransactionType(d.Type),
		CategoryID:  d.CategoryID,
		Source:      d.Source,
		Memo:        d.Memo,
		Fingerprint: d.Fingerprint,
		CreatedAt:   d.CreatedAt,
	}
}

// SaveEntries creates entry documents. Each chunk of up to 500 entries is one
// transaction; an existing ID aborts the chunk it falls in.
func (c *Client) SaveEntries(ctx context.Context, entries []domain.Entry) error {
	for _, chunk := range chunks(entries, maxWritesPerTransaction) {
		if err := c.saveChunk(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) saveChunk(ctx context.Context, entries []domain.Entry) error {
	seen := make(map[string]struct{}, len(entries))
	refs := make([]*firestore.DocumentRef, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("entry %s: %w", e.ID, domain.ErrAlreadyExists)
		}
		seen[e.ID] = struct{}{}
		refs = append(refs, c.entries().Doc(e.ID))
	}

	return c.Firestore.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return fmt.Errorf("failed to read entries: %w", err)
		}
		for i, snap := range snaps {
			if snap.Exists() {
				return fmt.Errorf("entry %s: %w", entries[i].ID, domain.ErrAlreadyExists)
			}
		}
		for i, e := range entries {
			if err := tx.Create(refs[i], toDoc(e)); err != nil {
				return fmt.Errorf("failed to create entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (c *Client) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	iter := c.entries().Where("fingerprint", "==", fingerprint).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	return true, nil
}

// ListEntries requires a composite index on (type, date, createdAt) when
// filtering by type.
func (c *Client) ListEntries(ctx context.Context, filter store.Filter) ([]domain.Entry, error) {
	q := c.entries().Query
	if filter.From != "" {
		q = q.Where("date", ">=", filter.From)
	}
	if filter.To != "" {
		q = q.Where("date", "<=", filter.To)
	}
	if filter.Type != "" {
		q = q.Where("type", "==", string(filter.Type))
	}
	q = q.OrderBy("date", firestore.Asc).OrderBy("createdAt", firestore.Asc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	entries := []domain.Entry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate entries: %w", err)
		}

		var d entryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to parse entry %s: %w", doc.Ref.ID, err)
		}
		entries = append(entries, d.entry())
	}

	return entries, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	doc, err := c.entries().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s: %w", id, err)
	}

	var d entryDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to parse entry %s: %w", id, err)
	}
	e := d.entry()
	return &e, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	_, err := c.entries().Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", id, err)
	}
	return nil
}

func chunks(entries []domain.Entry, size int) [][]domain.Entry {
	var out [][]domain.Entry
	for len(entries) > size {
		out = append(out, entries[:size])
		entries = entries[size:]
	}
	if len(entries) > 0 {
		out = append(out, entries)
	}
	return out
}
