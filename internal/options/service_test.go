package options

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

func procurementSchema() Schema[*ProcurementMethodOption] {
	return BasicSchema("procurement_method", func() *ProcurementMethodOption { return &ProcurementMethodOption{} })
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() uuid.UUID {
		n++
		return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
	}
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newProcurementService(t *testing.T, opts ...ServiceOption) (*Service[*ProcurementMethodOption], *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
	schema := procurementSchema()
	opts = append([]ServiceOption{WithNow(clock.Now), WithIDGenerator(sequentialIDs())}, opts...)
	return NewService(schema, NewMemoryStore(schema), opts...), clock
}

func procurement(name string) *ProcurementMethodOption {
	return &ProcurementMethodOption{Fields: Fields{Name: name}}
}

func stringPtr(v string) *string { return &v }

func TestServiceOpenTenderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, clock := newProcurementService(t)

	input := procurement("Open Tender")
	input.Description = stringPtr("Competitive bidding open to all suppliers")

	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if created.DeletedAt != nil {
		t.Fatalf("expected active record, got deleted_at %v", created.DeletedAt)
	}
	if !created.CreatedAt.Equal(clock.now) || !created.UpdatedAt.Equal(clock.now) {
		t.Fatalf("unexpected timestamps %v %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Open Tender" || got.Description == nil || *got.Description != *input.Description {
		t.Fatalf("unexpected record %+v", got.Fields)
	}

	if _, err := svc.Create(ctx, procurement("Open Tender")); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	clock.Advance(time.Hour)
	if _, err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	active, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active records, got %d", len(active))
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].DeletedAt == nil || !all[0].DeletedAt.Equal(clock.now) {
		t.Fatalf("expected soft deleted record in hard read, got %+v", all)
	}

	if err := svc.HardDelete(ctx, created.ID); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	all, err = svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected record removed, got %d", len(all))
	}
}

func TestServiceCreateRejectsDuplicateCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	if _, err := svc.Create(ctx, procurement("Direct Procurement")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, procurement("  direct procurement "))
	var exists *AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if exists.Field != "name" {
		t.Fatalf("expected name field, got %s", exists.Field)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected store unchanged, got %d records", len(all))
	}
}

func TestServiceUniquenessScope(t *testing.T) {
	ctx := context.Background()

	svc, _ := newProcurementService(t)
	created, err := svc.Create(ctx, procurement("Restricted Tender"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := svc.Create(ctx, procurement("Restricted Tender")); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected soft deleted name to block create, got %v", err)
	}

	schema := procurementSchema()
	schema.Scope = ScopeActive
	activeSvc := NewService(schema, NewMemoryStore(schema))
	first, err := activeSvc.Create(ctx, procurement("Restricted Tender"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := activeSvc.SoftDelete(ctx, first.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := activeSvc.Create(ctx, procurement("Restricted Tender")); err != nil {
		t.Fatalf("expected active scope to allow reuse, got %v", err)
	}
}

func TestServiceCreateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	if _, err := svc.Create(ctx, procurement("Framework Agreement")); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.CreateMany(ctx, []*ProcurementMethodOption{
		procurement("Request for Quotation"),
		procurement("framework agreement"),
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	_, err = svc.CreateMany(ctx, []*ProcurementMethodOption{
		procurement("Single Source"),
		procurement("SINGLE SOURCE"),
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected duplicate inside batch to be rejected, got %v", err)
	}

	_, err = svc.CreateMany(ctx, []*ProcurementMethodOption{procurement("Two Stage"), procurement("")})
	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if invalidErr.Index != 1 || invalidErr.FieldIssues()["name"] == "" {
		t.Fatalf("expected name issue on item 1, got %+v", invalidErr)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected only the first record, got %d", len(all))
	}

	created, err := svc.CreateMany(ctx, []*ProcurementMethodOption{procurement("Two Stage"), procurement("Single Source")})
	if err != nil {
		t.Fatalf("create many: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected two records, got %d", len(created))
	}
}

func TestServiceRejectsNilInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	if _, err := svc.Create(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil record, got %v", err)
	}
	if _, err := svc.CreateMany(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil batch, got %v", err)
	}
	if _, err := svc.GetMany(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil ids, got %v", err)
	}
	if _, err := svc.Get(ctx, uuid.Nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for nil id, got %v", err)
	}
}

func TestServiceGetManySkipsMissingAndDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	created, err := svc.CreateMany(ctx, []*ProcurementMethodOption{procurement("A"), procurement("B"), procurement("C")})
	if err != nil {
		t.Fatalf("create many: %v", err)
	}
	if _, err := svc.SoftDelete(ctx, created[1].ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	records, err := svc.GetMany(ctx, []uuid.UUID{created[2].ID, uuid.New(), created[1].ID, created[0].ID})
	if err != nil {
		t.Fatalf("get many: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two active records, got %d", len(records))
	}
	if records[0].ID != created[2].ID || records[1].ID != created[0].ID {
		t.Fatalf("expected request order, got %s %s", records[0].ID, records[1].ID)
	}

	empty, err := svc.GetMany(ctx, []uuid.UUID{})
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty result, got %v %v", empty, err)
	}
}

func TestServiceGetSoftDeletedIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	created, _ := svc.Create(ctx, procurement("Negotiated"))
	if _, err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{ID: created.ID, Name: "Negotiated 2"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected update of deleted record to fail, got %v", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, clock := newProcurementService(t)

	first, _ := svc.Create(ctx, procurement("Open Tender"))
	second, _ := svc.Create(ctx, procurement("Restricted Tender"))
	createdAt := first.CreatedAt

	clock.Advance(time.Minute)
	updated, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{
		ID:          first.ID,
		Name:        "Open National Tender",
		Description: stringPtr("national"),
	}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Open National Tender" || !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("unexpected update result %+v", updated.Fields)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at preserved, got %v", updated.CreatedAt)
	}

	if _, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{ID: first.ID, Name: "open national tender"}}); err != nil {
		t.Fatalf("expected renaming to own name to pass, got %v", err)
	}
	if _, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{ID: first.ID, Name: "Restricted Tender"}}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected collision with %s, got %v", second.ID, err)
	}
	if _, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{ID: uuid.New(), Name: "Ghost"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Update(ctx, &ProcurementMethodOption{Fields: Fields{Name: "No ID"}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestServiceUpdateManyValidatesWholeBatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	a, _ := svc.Create(ctx, procurement("A"))
	b, _ := svc.Create(ctx, procurement("B"))
	missing := uuid.New()

	_, err := svc.UpdateMany(ctx, []*ProcurementMethodOption{
		{Fields: Fields{ID: a.ID, Name: "A2"}},
		{Fields: Fields{ID: missing, Name: "M"}},
		{Fields: Fields{ID: b.ID, Name: "B2"}},
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) || len(nf.IDs) != 1 || nf.IDs[0] != missing {
		t.Fatalf("expected missing id reported, got %v", err)
	}

	got, _ := svc.Get(ctx, a.ID)
	if got.Name != "A" {
		t.Fatalf("expected no partial update, got %s", got.Name)
	}

	updated, err := svc.UpdateMany(ctx, []*ProcurementMethodOption{
		{Fields: Fields{ID: a.ID, Name: "B"}},
		{Fields: Fields{ID: b.ID, Name: "A"}},
	})
	if err == nil {
		t.Fatalf("expected swap to collide with stored names, got %v", updated)
	}
}

func TestServiceHardUpdateKeepsDeletionState(t *testing.T) {
	ctx := context.Background()
	svc, clock := newProcurementService(t)

	kept, _ := svc.Create(ctx, procurement("Kept"))
	archived, _ := svc.Create(ctx, procurement("Archived"))
	deleted, err := svc.SoftDelete(ctx, archived.ID)
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	clock.Advance(time.Hour)
	updated, err := svc.HardUpdate(ctx, &ProcurementMethodOption{Fields: Fields{ID: archived.ID, Name: "Kept"}})
	if err != nil {
		t.Fatalf("hard update: %v", err)
	}
	if updated.DeletedAt == nil || !updated.DeletedAt.Equal(*deleted.DeletedAt) {
		t.Fatalf("expected deleted_at untouched, got %v", updated.DeletedAt)
	}
	if !updated.UpdatedAt.Equal(clock.now) {
		t.Fatalf("expected updated_at refreshed, got %v", updated.UpdatedAt)
	}
	if _, err := svc.Get(ctx, kept.ID); err != nil {
		t.Fatalf("expected other record untouched: %v", err)
	}

	if _, err := svc.HardUpdate(ctx, &ProcurementMethodOption{Fields: Fields{ID: archived.ID, Name: " "}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected field validation on hard update, got %v", err)
	}
	if _, err := svc.HardUpdateMany(ctx, []*ProcurementMethodOption{{Fields: Fields{ID: uuid.New(), Name: "X"}}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceSoftDeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc, clock := newProcurementService(t)

	created, _ := svc.Create(ctx, procurement("Open Tender"))
	first, err := svc.SoftDelete(ctx, created.ID)
	if err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	clock.Advance(time.Hour)
	_, err = svc.SoftDelete(ctx, created.ID)
	var already *AlreadyDeletedError
	if !errors.As(err, &already) || already.IDs[0] != created.ID {
		t.Fatalf("expected AlreadyDeletedError, got %v", err)
	}

	all, _ := svc.ListAll(ctx)
	if !all[0].DeletedAt.Equal(*first.DeletedAt) {
		t.Fatalf("expected deleted_at unchanged, got %v", all[0].DeletedAt)
	}
}

func TestServiceSoftDeleteManyReportsMissingFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	a, _ := svc.Create(ctx, procurement("A"))
	c, _ := svc.Create(ctx, procurement("C"))
	b := uuid.MustParse("00000000-0000-0000-0000-0000000000bb")

	_, err := svc.SoftDeleteMany(ctx, []uuid.UUID{a.ID, b, c.ID})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if len(nf.IDs) != 1 || nf.IDs[0] != b {
		t.Fatalf("expected [b] reported, got %v", nf.IDs)
	}

	active, _ := svc.List(ctx)
	if len(active) != 2 {
		t.Fatalf("expected a and c untouched, got %d active", len(active))
	}

	if _, err := svc.SoftDelete(ctx, a.ID); err != nil {
		t.Fatalf("soft delete a: %v", err)
	}
	_, err = svc.SoftDeleteMany(ctx, []uuid.UUID{a.ID, c.ID})
	var already *AlreadyDeletedError
	if !errors.As(err, &already) || len(already.IDs) != 1 || already.IDs[0] != a.ID {
		t.Fatalf("expected [a] already deleted, got %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); err != nil {
		t.Fatalf("expected c still active: %v", err)
	}
}

func TestServiceHardDeleteMany(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	a, _ := svc.Create(ctx, procurement("A"))
	b, _ := svc.Create(ctx, procurement("B"))
	m1, m2 := uuid.New(), uuid.New()

	_, err := svc.HardDeleteMany(ctx, []uuid.UUID{a.ID, m1, b.ID, m2})
	var nf *NotFoundError
	if !errors.As(err, &nf) || len(nf.IDs) != 2 {
		t.Fatalf("expected both missing ids reported, got %v", err)
	}
	all, _ := svc.ListAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected nothing removed, got %d", len(all))
	}

	if _, err := svc.SoftDelete(ctx, b.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	n, err := svc.HardDeleteMany(ctx, []uuid.UUID{a.ID, b.ID})
	if err != nil || n != 2 {
		t.Fatalf("expected two removed, got %d %v", n, err)
	}
	if err := svc.HardDelete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}

func TestServiceHardDeleteAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	n, err := svc.HardDeleteAll(ctx)
	if err != nil || n != 0 {
		t.Fatalf("expected empty purge, got %d %v", n, err)
	}

	created, _ := svc.CreateMany(ctx, []*ProcurementMethodOption{procurement("A"), procurement("B")})
	if _, err := svc.SoftDelete(ctx, created[0].ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	n, err = svc.HardDeleteAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected two removed, got %d %v", n, err)
	}
	all, _ := svc.ListAll(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d", len(all))
	}
}

func TestServicePublishesChangeEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := NewBroadcaster()
	ch, err := events.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	svc, _ := newProcurementService(t, WithBroadcaster(events))

	created, _ := svc.Create(ctx, procurement("Open Tender"))
	if _, err := svc.Create(ctx, procurement("Open Tender")); err == nil {
		t.Fatal("expected duplicate to fail")
	}
	if _, err := svc.SoftDelete(ctx, created.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	want := []ChangeType{"created", "soft_deleted"}
	for _, typ := range want {
		select {
		case evt := <-ch:
			if evt.Type != typ || evt.Kind != "procurement_method" {
				t.Fatalf("expected %s event, got %+v", typ, evt)
			}
			if len(evt.IDs) != 1 || evt.IDs[0] != created.ID.String() {
				t.Fatalf("unexpected ids %v", evt.IDs)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
	select {
	case evt := <-ch:
		t.Fatalf("unexpected extra event %+v", evt)
	default:
	}
}

func TestServiceReturnsCopies(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProcurementService(t)

	input := procurement("Open Tender")
	created, _ := svc.Create(ctx, input)
	input.Name = "mutated"
	created.Name = "mutated"

	got, _ := svc.Get(ctx, created.ID)
	if got.Name != "Open Tender" {
		t.Fatalf("expected stored record isolated from callers, got %s", got.Name)
	}
	if input.ID != uuid.Nil {
		t.Fatalf("expected input left untouched, got id %s", input.ID)
	}
}
