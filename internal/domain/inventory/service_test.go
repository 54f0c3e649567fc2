package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testRepo struct {
	items     map[string]Item
	movements map[string][]Movement

	applyErr  error // falla la siguiente escritura de movimiento
	conflicts int   // fuerza N conflictos de stock antes de aceptar
}

func newTestRepo() *testRepo {
	return &testRepo{
		items:     map[string]Item{},
		movements: map[string][]Movement{},
	}
}

func (r *testRepo) Create(ctx context.Context, i Item) error {
	r.items[i.ID] = i
	return nil
}

func (r *testRepo) Update(ctx context.Context, i Item) error {
	if _, ok := r.items[i.ID]; !ok {
		return errors.New("missing item")
	}
	r.items[i.ID] = i
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Item, bool, error) {
	i, ok := r.items[id]
	return i, ok, nil
}

func (r *testRepo) GetByName(ctx context.Context, name string) (Item, bool, error) {
	for _, i := range r.items {
		if strings.EqualFold(i.Name, name) {
			return i, true, nil
		}
	}
	return Item{}, false, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Item, error) {
	var out []Item
	for _, i := range r.items {
		if f.OnlyActive && !i.Active {
			continue
		}
		if f.Type != "" && i.Type != f.Type {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (r *testRepo) ApplyMovement(ctx context.Context, i Item, expectedStock int, m Movement) error {
	if r.applyErr != nil {
		err := r.applyErr
		r.applyErr = nil
		return err
	}
	if r.conflicts > 0 {
		r.conflicts--
		return ErrStockConflict
	}
	current, ok := r.items[i.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Stock != expectedStock {
		return ErrStockConflict
	}
	r.items[i.ID] = i
	r.movements[m.ItemID] = append(r.movements[m.ItemID], m)
	return nil
}

func (r *testRepo) ListMovements(ctx context.Context, itemID string) ([]Movement, error) {
	return r.movements[itemID], nil
}

func (r *testRepo) ListExpiring(ctx context.Context, until time.Time) ([]Item, error) {
	var out []Item
	for _, i := range r.items {
		if i.Active && i.ExpiresAt != nil && !i.ExpiresAt.After(until) {
			out = append(out, i)
		}
	}
	return out, nil
}

type testNotifier struct {
	alerts []string
}

func (n *testNotifier) LowStock(ctx context.Context, item Item) {
	n.alerts = append(n.alerts, item.Name)
}

func newTestService() (*Service, *testRepo, *testNotifier) {
	notifier := &testNotifier{}
	repo := newTestRepo()
	svc := NewService(repo, notifier)
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo, notifier
}

func mustCreateItem(t *testing.T, svc *Service, stock, minStock int) Item {
	t.Helper()
	item, err := svc.Create(context.Background(), CreateInput{
		Name:     "Vacuna antirrábica",
		Type:     "vaccine",
		Unit:     "dosis",
		Stock:    stock,
		MinStock: minStock,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService()

	item := mustCreateItem(t, svc, 20, 5)
	if !item.Active || item.Stock != 20 {
		t.Fatalf("unexpected item: %+v", item)
	}

	// Nombre repetido.
	if _, err := svc.Create(context.Background(), CreateInput{
		Name: "vacuna antirrábica", Type: "vaccine",
	}, "admin-1"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	// Tipo desconocido.
	if _, err := svc.Create(context.Background(), CreateInput{
		Name: "Gasas", Type: "toy",
	}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_RegisterMovement(t *testing.T) {
	svc, _, _ := newTestService()
	item := mustCreateItem(t, svc, 10, 2)

	m, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "in", Quantity: 5, Reason: "compra",
	}, "admin-1")
	if err != nil {
		t.Fatalf("movement in: %v", err)
	}
	if m.ResultingStock != 15 {
		t.Fatalf("expected stock 15, got %d", m.ResultingStock)
	}

	m, err = svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 4, Reason: "aplicación",
	}, "vet-1")
	if err != nil {
		t.Fatalf("movement out: %v", err)
	}
	if m.ResultingStock != 11 {
		t.Fatalf("expected stock 11, got %d", m.ResultingStock)
	}

	// Ajuste fija el stock.
	m, err = svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "adjustment", Quantity: 7, Reason: "conteo físico",
	}, "admin-1")
	if err != nil {
		t.Fatalf("movement adjustment: %v", err)
	}
	if m.ResultingStock != 7 {
		t.Fatalf("expected stock 7, got %d", m.ResultingStock)
	}

	moves, err := svc.ListMovements(context.Background(), item.ID)
	if err != nil || len(moves) != 3 {
		t.Fatalf("expected 3 movements, got %d (%v)", len(moves), err)
	}
}

func TestService_RegisterMovement_InsufficientStock(t *testing.T) {
	svc, _, _ := newTestService()
	item := mustCreateItem(t, svc, 3, 1)

	_, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 4,
	}, "vet-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// El stock no cambió.
	got, _ := svc.GetByID(context.Background(), item.ID)
	if got.Stock != 3 {
		t.Fatalf("stock changed on rejected movement: %d", got.Stock)
	}
}

func TestService_Create_StockLevels(t *testing.T) {
	svc, _, _ := newTestService()

	// Máximo por debajo del mínimo.
	if _, err := svc.Create(context.Background(), CreateInput{
		Name: "Suero", Type: "clinical_supply", Stock: 10, MinStock: 5, MaxStock: 3,
	}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// Precio negativo.
	if _, err := svc.Create(context.Background(), CreateInput{
		Name: "Suero", Type: "clinical_supply", SalePrice: -1,
	}, "admin-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	item, err := svc.Create(context.Background(), CreateInput{
		Name: "Suero", Type: "clinical_supply", Stock: 10, MinStock: 5, MaxStock: 40,
		PurchasePrice: 2.5, SalePrice: 4, Batch: "L-204",
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.MaxStock != 40 || item.Batch != "L-204" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if pct := item.StockPercent(); pct != 25 {
		t.Fatalf("expected 25%% of capacity, got %v", pct)
	}
}

func TestService_RegisterMovement_PersistFailure(t *testing.T) {
	svc, repo, _ := newTestService()
	item := mustCreateItem(t, svc, 10, 2)

	repo.applyErr = errors.New("db down")
	if _, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 4, Reason: "aplicación",
	}, "vet-1"); err == nil {
		t.Fatal("expected error from failed persistence")
	}

	// Ni el stock ni el historial quedaron a medias.
	got, _ := svc.GetByID(context.Background(), item.ID)
	if got.Stock != 10 {
		t.Fatalf("stock changed on failed movement: %d", got.Stock)
	}
	moves, _ := svc.ListMovements(context.Background(), item.ID)
	if len(moves) != 0 {
		t.Fatalf("expected no movements, got %d", len(moves))
	}
}

func TestService_RegisterMovement_RetriesOnConflict(t *testing.T) {
	svc, repo, _ := newTestService()
	item := mustCreateItem(t, svc, 10, 2)

	// El primer intento pierde la carrera y se reintenta.
	repo.conflicts = 1
	m, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 4, Reason: "aplicación",
	}, "vet-1")
	if err != nil {
		t.Fatalf("movement: %v", err)
	}
	if m.ResultingStock != 6 {
		t.Fatalf("expected stock 6, got %d", m.ResultingStock)
	}

	moves, _ := svc.ListMovements(context.Background(), item.ID)
	if len(moves) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(moves))
	}

	// Conflictos persistentes agotan los reintentos.
	repo.conflicts = movementAttempts
	if _, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "in", Quantity: 1,
	}, "vet-1"); !errors.Is(err, ErrStockConflict) {
		t.Fatalf("expected ErrStockConflict, got %v", err)
	}
}

func TestService_RegisterMovement_LowStockAlert(t *testing.T) {
	svc, _, notifier := newTestService()
	item := mustCreateItem(t, svc, 10, 5)

	// Queda sobre el mínimo: sin aviso.
	if _, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 4,
	}, "vet-1"); err != nil {
		t.Fatalf("movement: %v", err)
	}
	if len(notifier.alerts) != 0 {
		t.Fatalf("no alert expected, got %v", notifier.alerts)
	}

	// Queda en el mínimo: se avisa.
	if _, err := svc.RegisterMovement(context.Background(), item.ID, MovementInput{
		Type: "out", Quantity: 1,
	}, "vet-1"); err != nil {
		t.Fatalf("movement: %v", err)
	}
	if len(notifier.alerts) != 1 || notifier.alerts[0] != item.Name {
		t.Fatalf("expected low stock alert, got %v", notifier.alerts)
	}
}

func TestService_Reports(t *testing.T) {
	svc, _, _ := newTestService()

	low := mustCreateItem(t, svc, 2, 5)

	expires := time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)
	soon, err := svc.Create(context.Background(), CreateInput{
		Name: "Amoxicilina", Type: "antibiotic", Stock: 50, MinStock: 10, ExpiresAt: &expires,
	}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	lowItems, err := svc.LowStockReport(context.Background())
	if err != nil || len(lowItems) != 1 || lowItems[0].ID != low.ID {
		t.Fatalf("unexpected low stock report: %v (%v)", lowItems, err)
	}

	expiring, err := svc.ExpiringReport(context.Background(), 30)
	if err != nil || len(expiring) != 1 || expiring[0].ID != soon.ID {
		t.Fatalf("unexpected expiring report: %v (%v)", expiring, err)
	}

	// Fuera de la ventana pedida.
	expiring, err = svc.ExpiringReport(context.Background(), 7)
	if err != nil || len(expiring) != 0 {
		t.Fatalf("expected empty expiring report, got %v (%v)", expiring, err)
	}
}
