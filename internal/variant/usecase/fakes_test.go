package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fekuna/omnipos-variant-service/internal/blob"
	"github.com/fekuna/omnipos-variant-service/internal/model"
	"github.com/fekuna/omnipos-variant-service/internal/variant"
	"github.com/fekuna/omnipos-variant-service/internal/variant/dto"
	"github.com/stretchr/testify/mock"
)

// memRepo keeps records in insertion order, which doubles as creation order.
type memRepo struct {
	mu        sync.Mutex
	records   []model.VariantRecord
	seq       int
	mergeErr  error
	createErr map[string]error
	updateErr map[string]error
	creates   int
	updates   int

	// beforeMerge runs without the mutex held, after consolidation has read
	// the rows and before the merge applies.
	beforeMerge func()
}

func newMemRepo() *memRepo {
	return &memRepo{createErr: map[string]error{}, updateErr: map[string]error{}}
}

func (r *memRepo) add(id string, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records[i].Quantity += qty
		}
	}
}

func (r *memRepo) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	r.records = kept
}

func (r *memRepo) seed(productID, locationID, name string, qty int, value string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec := model.VariantRecord{
		BaseModel: model.BaseModel{
			ID:        "seed-" + strconv.Itoa(r.seq),
			CreatedAt: time.Unix(int64(r.seq), 0),
		},
		ProductID:    productID,
		LocationID:   locationID,
		Kind:         model.VariantKindColor,
		Name:         name,
		Quantity:     qty,
		EncodedValue: value,
	}
	r.records = append(r.records, rec)
	return rec.ID
}

func (r *memRepo) byName(name string) []model.VariantRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.VariantRecord
	for _, rec := range r.records {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

func (r *memRepo) ListByLocation(_ context.Context, productID, locationID string) ([]model.VariantRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.VariantRecord{}
	for _, rec := range r.records {
		if rec.ProductID == productID && rec.LocationID == locationID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) FindCanonical(_ context.Context, productID, locationID string, key model.VariantKey) (*model.VariantRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ProductID == productID && rec.LocationID == locationID && rec.Key() == key {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, rec *model.VariantRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr[rec.Name]; err != nil {
		return err
	}
	r.creates++
	r.records = append(r.records, *rec)
	return nil
}

func (r *memRepo) UpdateQuantityAndValue(_ context.Context, id string, quantity int, encodedValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[id]; err != nil {
		return err
	}
	for i := range r.records {
		if r.records[i].ID == id {
			r.updates++
			r.records[i].Quantity = quantity
			r.records[i].EncodedValue = encodedValue
			return nil
		}
	}
	return errors.New("record not found")
}

func (r *memRepo) MergeDuplicates(_ context.Context, primaryID string, duplicateIDs []string) (int, error) {
	if r.beforeMerge != nil {
		hook := r.beforeMerge
		r.beforeMerge = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mergeErr != nil {
		return 0, r.mergeErr
	}

	merge := map[string]bool{primaryID: true}
	for _, id := range duplicateIDs {
		merge[id] = true
	}
	total, found := 0, 0
	for _, rec := range r.records {
		if merge[rec.ID] {
			total += rec.Quantity
			found++
		}
	}
	if found != len(merge) {
		return 0, variant.ErrRecordsChanged
	}

	kept := r.records[:0]
	for _, rec := range r.records {
		if merge[rec.ID] && rec.ID != primaryID {
			continue
		}
		if rec.ID == primaryID {
			rec.Quantity = total
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return total, nil
}

type stubLedger struct {
	quantity int
	err      error
}

func (l *stubLedger) GetProductInventory(_ context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &model.InventoryRecord{ProductID: productID, LocationID: locationID, Quantity: l.quantity}, nil
}

type stubCatalog struct {
	attrs []model.VariantAttribute
}

func (c *stubCatalog) ListByProduct(context.Context, string) ([]model.VariantAttribute, error) {
	return c.attrs, nil
}

type stubLocations struct {
	known map[string]bool
}

func (l *stubLocations) GetLocation(_ context.Context, id string) (*model.Location, error) {
	if !l.known[id] {
		return nil, nil
	}
	return &model.Location{BaseModel: model.BaseModel{ID: id}, Name: id, Kind: model.LocationKindBranch}, nil
}

// stubLocker grants a key to one holder at a time. free=false refuses every
// attempt.
type stubLocker struct {
	mu       sync.Mutex
	free     bool
	held     map[string]string
	attempts int
	released int
}

func (l *stubLocker) AcquireLock(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	if !l.free {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, taken := l.held[key]; taken {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *stubLocker) ReleaseLock(_ context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	if l.held[key] == value {
		delete(l.held, key)
	}
	return nil
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Upload(ctx context.Context, file blob.File, bucket string) (blob.Object, error) {
	args := m.Called(ctx, file, bucket)
	return args.Get(0).(blob.Object), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCommitted(ctx context.Context, event *dto.CommittedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
