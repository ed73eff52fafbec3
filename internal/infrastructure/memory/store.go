// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria. Lo usan los tests de aplicación: misma semántica transaccional que
// el adaptador de PostgreSQL (commit total o nada) sin levantar una base.
package memory

import (
	"context"
	"sync"

	"github.com/tallerpro/manufactura-api/internal/application/ports"
	"github.com/tallerpro/manufactura-api/internal/domain/entity"
)

// state es el contenido completo del almacén. Las transacciones trabajan
// sobre un clon y solo se publica si la función termina sin error.
type state struct {
	items         map[string]*entity.Item
	movements     []*entity.MovementEntry
	bomEdges      map[string]*entity.BOMEdge
	snapshotLines []*entity.BOMSnapshotLine
	plans         map[string]*entity.ProductionPlan
	logs          map[string]*entity.ProductionLog
	reservations  map[string]*entity.Reservation
	notifications map[string]*entity.CriticalNotification
}

func newState() *state {
	return &state{
		items:         make(map[string]*entity.Item),
		bomEdges:      make(map[string]*entity.BOMEdge),
		plans:         make(map[string]*entity.ProductionPlan),
		logs:          make(map[string]*entity.ProductionLog),
		reservations:  make(map[string]*entity.Reservation),
		notifications: make(map[string]*entity.CriticalNotification),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, it := range s.items {
		cp := *it
		c.items[id] = &cp
	}
	c.movements = make([]*entity.MovementEntry, len(s.movements))
	for i, m := range s.movements {
		cp := *m
		c.movements[i] = &cp
	}
	for id, e := range s.bomEdges {
		cp := *e
		c.bomEdges[id] = &cp
	}
	c.snapshotLines = make([]*entity.BOMSnapshotLine, len(s.snapshotLines))
	for i, l := range s.snapshotLines {
		cp := *l
		c.snapshotLines[i] = &cp
	}
	for id, p := range s.plans {
		cp := *p
		c.plans[id] = &cp
	}
	for id, l := range s.logs {
		cp := *l
		c.logs[id] = &cp
	}
	for id, r := range s.reservations {
		cp := *r
		c.reservations[id] = &cp
	}
	for id, n := range s.notifications {
		cp := *n
		c.notifications[id] = &cp
	}
	return c
}

// Store es el almacén en memoria. Implementa ports.TxRunner y expone
// repositorios ligados al estado vivo para lecturas fuera de transacción.
type Store struct {
	mu sync.Mutex
	s  *state
}

var _ ports.TxRunner = (*Store)(nil)

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{s: newState()}
}

// Run ejecuta fn contra un clon del estado; el clon reemplaza al estado vivo
// solo si fn devuelve nil. Un error descarta el clon completo: nunca hay
// escrituras parciales visibles.
func (st *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	draft := st.s.clone()
	if err := fn(reposFor(draft)); err != nil {
		return err
	}
	st.s = draft
	return nil
}

// Repos devuelve repositorios ligados al estado vivo, para las lecturas que
// los use cases hacen fuera de transacción. Siguen al estado publicado: ven
// los commits de transacciones posteriores.
func (st *Store) Repos() ports.Repos {
	return reposOver(func() *state { return st.s })
}

func reposFor(s *state) ports.Repos {
	return reposOver(func() *state { return s })
}

func reposOver(get func() *state) ports.Repos {
	return ports.Repos{
		Items:         &ItemRepo{get: get},
		Movements:     &MovementRepo{get: get},
		BOM:           &BOMRepo{get: get},
		Snapshots:     &BOMSnapshotRepo{get: get},
		Plans:         &PlanRepo{get: get},
		Logs:          &LogRepo{get: get},
		Reservations:  &ReservationRepo{get: get},
		Notifications: &NotificationRepo{get: get},
	}
}
