package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/coverbase/internal/risktype/domain"
	risktypeservice "github.com/smallbiznis/coverbase/internal/risktype/service"
	"github.com/smallbiznis/coverbase/internal/seed"
	statedomain "github.com/smallbiznis/coverbase/internal/state/domain"
	stateservice "github.com/smallbiznis/coverbase/internal/state/service"
	"github.com/smallbiznis/coverbase/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(
		&statedomain.State{},
		&domain.RiskType{},
		&domain.RiskField{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := seed.EnsureStates(conn); err != nil {
		t.Fatalf("seed states: %v", err)
	}

	return conn
}

func newService(t *testing.T, conn *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	states := stateservice.New(stateservice.Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.ProvideStore[statedomain.State](conn),
	})

	return risktypeservice.New(risktypeservice.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		States: states,
		Types:  repository.ProvideStore[domain.RiskType](conn),
		Fields: repository.ProvideStore[domain.RiskField](conn),
	})
}

func riskTypeCount(t *testing.T, conn *gorm.DB, name string) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(&domain.RiskType{}).Where("name = ?", name).Count(&count).Error; err != nil {
		t.Fatalf("count risk types: %v", err)
	}
	return count
}

func TestUpsertRequiresName(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	_, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "", Description: "x"})
	if err != domain.ErrNameRequired {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	var count int64
	if err := conn.Model(&domain.RiskType{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no writes, found %d rows", count)
	}
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	first, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Robbery Cover", Description: "d1"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !first.Created {
		t.Fatal("first upsert should create")
	}

	second, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Robbery Cover", Description: "d2"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Created {
		t.Fatal("second upsert should update, not create")
	}
	if second.RiskType.Description != "d2" {
		t.Fatalf("expected description d2, got %q", second.RiskType.Description)
	}
	if got := riskTypeCount(t, conn, "Robbery Cover"); got != 1 {
		t.Fatalf("expected exactly one row, found %d", got)
	}
}

func TestUpsertReactivatesDeletedRiskType(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	created, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Fire Cover", Description: "old"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	var deleted statedomain.State
	if err := conn.Where("name = ?", statedomain.StateDeleted).First(&deleted).Error; err != nil {
		t.Fatalf("load deleted state: %v", err)
	}
	if err := conn.Model(&domain.RiskType{}).
		Where("id = ?", created.RiskType.ID).
		Update("state_id", deleted.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	revived, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Fire Cover", Description: "new"})
	if err != nil {
		t.Fatalf("revive upsert: %v", err)
	}
	if revived.Created {
		t.Fatal("revive should reuse the existing row")
	}

	var active statedomain.State
	if err := conn.Where("name = ?", statedomain.StateActive).First(&active).Error; err != nil {
		t.Fatalf("load active state: %v", err)
	}
	if revived.RiskType.StateID != active.ID {
		t.Fatal("revived risk type should be Active again")
	}
	if revived.RiskType.Description != "new" {
		t.Fatalf("expected description new, got %q", revived.RiskType.Description)
	}
}

func TestGetNameCollisionNewestWins(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	var active statedomain.State
	if err := conn.Where("name = ?", statedomain.StateActive).First(&active).Error; err != nil {
		t.Fatalf("load active state: %v", err)
	}

	older := domain.RiskType{
		ID: node.Generate(), Name: "Flood Cover", StateID: active.ID,
		CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := domain.RiskType{
		ID: node.Generate(), Name: "Flood Cover", StateID: active.ID,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := conn.Create(&older).Error; err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := conn.Create(&newer).Error; err != nil {
		t.Fatalf("create newer: %v", err)
	}

	detail, err := svc.Get(ctx, "Flood Cover")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.RiskType.ID != newer.ID {
		t.Fatalf("expected newest risk type %v, got %v", newer.ID, detail.RiskType.ID)
	}
}

func TestGetValidation(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	if _, err := svc.Get(ctx, ""); err != domain.ErrRiskTypeRequired {
		t.Fatalf("expected ErrRiskTypeRequired, got %v", err)
	}
	if _, err := svc.Get(ctx, "Unknown Cover"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAttachFieldsFreezesSchema(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	created, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Automobile Cover"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id := created.RiskType.ID.String()

	fields := []domain.FieldDefinition{
		{FieldType: "text", Caption: "Registration Number"},
		{FieldType: "number", Caption: "Vehicle Value"},
		{FieldType: "date", Caption: "Purchase Date"},
	}
	if err := svc.AttachFields(ctx, domain.AttachFieldsRequest{RiskTypeID: id, Fields: fields}); err != nil {
		t.Fatalf("attach fields: %v", err)
	}

	detail, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.RiskFields) != len(fields) {
		t.Fatalf("expected %d fields, got %d", len(fields), len(detail.RiskFields))
	}
	for i, field := range detail.RiskFields {
		if field.Order != i {
			t.Fatalf("expected field %d at order %d, got %d", i, i, field.Order)
		}
	}

	// Second attach must refuse; the schema is frozen.
	err = svc.AttachFields(ctx, domain.AttachFieldsRequest{RiskTypeID: id, Fields: fields})
	if err != domain.ErrFormAlreadyDefined {
		t.Fatalf("expected ErrFormAlreadyDefined, got %v", err)
	}

	var count int64
	if err := conn.Model(&domain.RiskField{}).Where("risk_type_id = ?", created.RiskType.ID).Count(&count).Error; err != nil {
		t.Fatalf("count fields: %v", err)
	}
	if count != int64(len(fields)) {
		t.Fatalf("expected %d persisted fields, got %d", len(fields), count)
	}
}

func TestAttachFieldsRollsBackOnMalformedField(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	created, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "House Cover"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id := created.RiskType.ID.String()

	err = svc.AttachFields(ctx, domain.AttachFieldsRequest{
		RiskTypeID: id,
		Fields: []domain.FieldDefinition{
			{FieldType: "text", Caption: "Address"},
			{FieldType: "bogus", Caption: "Broken"},
		},
	})
	if err == nil {
		t.Fatal("expected attach to fail on malformed field")
	}

	var count int64
	if err := conn.Model(&domain.RiskField{}).Where("risk_type_id = ?", created.RiskType.ID).Count(&count).Error; err != nil {
		t.Fatalf("count fields: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero persisted fields, got %d", count)
	}

	var riskType domain.RiskType
	if err := conn.First(&riskType, "id = ?", created.RiskType.ID).Error; err != nil {
		t.Fatalf("reload risk type: %v", err)
	}
	if riskType.HasForm {
		t.Fatal("has_form must stay false after rollback")
	}
}

func TestAttachFieldsValidation(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	err := svc.AttachFields(ctx, domain.AttachFieldsRequest{RiskTypeID: "", Fields: nil})
	if err != domain.ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	// Both arguments are required, not just one of them.
	err = svc.AttachFields(ctx, domain.AttachFieldsRequest{
		RiskTypeID: "",
		Fields:     []domain.FieldDefinition{{FieldType: "text", Caption: "X"}},
	})
	if err != domain.ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	err = svc.AttachFields(ctx, domain.AttachFieldsRequest{
		RiskTypeID: "123456789",
		Fields:     []domain.FieldDefinition{{FieldType: "text", Caption: "X"}},
	})
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListExcludesDeleted(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	if _, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Kept Cover"}); err != nil {
		t.Fatalf("upsert kept: %v", err)
	}

	gone, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Gone Cover"})
	if err != nil {
		t.Fatalf("upsert gone: %v", err)
	}

	var deleted statedomain.State
	if err := conn.Where("name = ?", statedomain.StateDeleted).First(&deleted).Error; err != nil {
		t.Fatalf("load deleted state: %v", err)
	}
	if err := conn.Model(&domain.RiskType{}).
		Where("id = ?", gone.RiskType.ID).
		Update("state_id", deleted.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	views, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 risk type, got %d", len(views))
	}
	if views[0].Name != "Kept Cover" {
		t.Fatalf("expected Kept Cover, got %q", views[0].Name)
	}
	if views[0].State != statedomain.StateActive {
		t.Fatalf("expected Active state, got %q", views[0].State)
	}
}

func TestGetExcludesInactiveFields(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	svc := newService(t, conn)

	created, err := svc.Upsert(ctx, domain.UpsertRiskTypeRequest{Name: "Marine Cover"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id := created.RiskType.ID.String()

	fields := make([]domain.FieldDefinition, 0, 7)
	for _, caption := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		fields = append(fields, domain.FieldDefinition{FieldType: "text", Caption: caption})
	}
	if err := svc.AttachFields(ctx, domain.AttachFieldsRequest{RiskTypeID: id, Fields: fields}); err != nil {
		t.Fatalf("attach fields: %v", err)
	}

	var deleted statedomain.State
	if err := conn.Where("name = ?", statedomain.StateDeleted).First(&deleted).Error; err != nil {
		t.Fatalf("load deleted state: %v", err)
	}
	if err := conn.Model(&domain.RiskField{}).
		Where("risk_type_id = ? AND caption IN ?", created.RiskType.ID, []string{"B", "E"}).
		Update("state_id", deleted.ID).Error; err != nil {
		t.Fatalf("soft delete fields: %v", err)
	}

	detail, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.RiskFields) != 5 {
		t.Fatalf("expected 5 active fields, got %d", len(detail.RiskFields))
	}
	for i := 1; i < len(detail.RiskFields); i++ {
		if detail.RiskFields[i-1].Order > detail.RiskFields[i].Order {
			t.Fatal("fields must be ordered ascending by order")
		}
	}
}
