// Package memory содержит in-memory реализации репозиториев с теми же ошибками,
// что и PostgreSQL репозитории. Используется в тестах сервисов и usecase.
package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

// Store общее состояние всех in-memory репозиториев
type Store struct {
	mu     sync.Mutex
	nextID int64

	salons       map[int64]*domain.Salon
	services     map[int64]*domain.Service
	employees    map[int64]*domain.Employee
	appointments map[int64]*domain.Appointment
	fees         map[int64]*domain.CancellationFee
	links        map[int64]*domain.BookingLink
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		nextID:       1000,
		salons:       make(map[int64]*domain.Salon),
		services:     make(map[int64]*domain.Service),
		employees:    make(map[int64]*domain.Employee),
		appointments: make(map[int64]*domain.Appointment),
		fees:         make(map[int64]*domain.CancellationFee),
		links:        make(map[int64]*domain.BookingLink),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddSalon добавляет салон
func (s *Store) AddSalon(salon domain.Salon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salons[salon.ID] = &salon
}

// AddService добавляет услугу
func (s *Store) AddService(service domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[service.ID] = &service
}

// AddEmployee добавляет сотрудника
func (s *Store) AddEmployee(employee domain.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	employee.ServiceIDs = append([]int64(nil), employee.ServiceIDs...)
	s.employees[employee.ID] = &employee
}

// AddAppointment добавляет запись как есть (ID обязателен), без проверки уникальности
func (s *Store) AddAppointment(a domain.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[a.ID] = &a
}

// AddFee добавляет штраф как есть
func (s *Store) AddFee(fee domain.CancellationFee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fees[fee.ID] = &fee
}

// AddLink добавляет ссылку как есть
func (s *Store) AddLink(link domain.BookingLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.ID] = &link
}

// AllAppointments снимок всех записей (копии)
func (s *Store) AllAppointments() []domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		result = append(result, *a)
	}
	return result
}

// AllFees снимок всех штрафов (копии)
func (s *Store) AllFees() []domain.CancellationFee {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.CancellationFee, 0, len(s.fees))
	for _, f := range s.fees {
		result = append(result, *f)
	}
	return result
}

type snapshot struct {
	nextID       int64
	salons       map[int64]domain.Salon
	appointments map[int64]domain.Appointment
	fees         map[int64]domain.CancellationFee
	links        map[int64]domain.BookingLink
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		nextID:       s.nextID,
		salons:       make(map[int64]domain.Salon, len(s.salons)),
		appointments: make(map[int64]domain.Appointment, len(s.appointments)),
		fees:         make(map[int64]domain.CancellationFee, len(s.fees)),
		links:        make(map[int64]domain.BookingLink, len(s.links)),
	}
	for id, v := range s.salons {
		snap.salons[id] = *v
	}
	for id, v := range s.appointments {
		snap.appointments[id] = *v
	}
	for id, v := range s.fees {
		snap.fees[id] = *v
	}
	for id, v := range s.links {
		snap.links[id] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID = snap.nextID
	s.salons = make(map[int64]*domain.Salon, len(snap.salons))
	for id, v := range snap.salons {
		v := v
		s.salons[id] = &v
	}
	s.appointments = make(map[int64]*domain.Appointment, len(snap.appointments))
	for id, v := range snap.appointments {
		v := v
		s.appointments[id] = &v
	}
	s.fees = make(map[int64]*domain.CancellationFee, len(snap.fees))
	for id, v := range snap.fees {
		v := v
		s.fees[id] = &v
	}
	s.links = make(map[int64]*domain.BookingLink, len(snap.links))
	for id, v := range snap.links {
		v := v
		s.links[id] = &v
	}
}

// TxManager выполняет транзакции строго последовательно (аналог блокировок строк)
// и откатывает состояние хранилища при ошибке fn.
type TxManager struct {
	store *Store
	txMu  sync.Mutex
}

// NewTxManager создает менеджер транзакций поверх store
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context, scope *txmanager.Scope) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(ctx, txmanager.NewScope(nil)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context, scope *txmanager.Scope) error) error {
	return m.Do(ctx, fn)
}
