package view

import (
	"errors"
	"sort"

	"incometracker/models"
)

type fakeSession uint

func (s fakeSession) LoggedInUserID() uint { return uint(s) }

// memStore 内存版收入/备注/用户存储
type memStore struct {
	nextID  uint
	incomes map[uint]models.Income
	notes   map[uint]models.Note
	users   map[uint]models.User

	failNext error
	calls    []string
}

func newMemStore(users ...models.User) *memStore {
	s := &memStore{
		incomes: make(map[uint]models.Income),
		notes:   make(map[uint]models.Note),
		users:   make(map[uint]models.User),
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) stores() Stores {
	return Stores{Incomes: s, Notes: s, Users: s}
}

func (s *memStore) fail() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) GetIncomesByUserID(userID uint) ([]models.Income, error) {
	s.calls = append(s.calls, "GetIncomesByUserID")
	if err := s.fail(); err != nil {
		return nil, err
	}
	var list []models.Income
	for _, in := range s.incomes {
		if in.UserID == userID {
			list = append(list, in)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *memStore) AddIncome(in *models.Income) error {
	s.calls = append(s.calls, "AddIncome")
	if err := s.fail(); err != nil {
		return err
	}
	s.nextID++
	in.ID = s.nextID
	s.incomes[in.ID] = *in
	return nil
}

func (s *memStore) UpdateIncome(in *models.Income) error {
	s.calls = append(s.calls, "UpdateIncome")
	if err := s.fail(); err != nil {
		return err
	}
	if _, ok := s.incomes[in.ID]; !ok {
		return errors.New("no such income")
	}
	s.incomes[in.ID] = *in
	return nil
}

func (s *memStore) DeleteIncome(id uint) error {
	s.calls = append(s.calls, "DeleteIncome")
	if err := s.fail(); err != nil {
		return err
	}
	delete(s.incomes, id)
	return nil
}

func (s *memStore) GetNotesByUserID(userID uint) ([]models.Note, error) {
	s.calls = append(s.calls, "GetNotesByUserID")
	if err := s.fail(); err != nil {
		return nil, err
	}
	var list []models.Note
	for _, n := range s.notes {
		if n.UserID == userID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (s *memStore) AddNote(n *models.Note) error {
	s.calls = append(s.calls, "AddNote")
	if err := s.fail(); err != nil {
		return err
	}
	s.nextID++
	n.ID = s.nextID
	s.notes[n.ID] = *n
	return nil
}

func (s *memStore) DeleteNoteByID(id uint) error {
	s.calls = append(s.calls, "DeleteNoteByID")
	if err := s.fail(); err != nil {
		return err
	}
	delete(s.notes, id)
	return nil
}

func (s *memStore) FindUserByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}
