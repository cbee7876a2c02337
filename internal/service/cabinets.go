package service

import (
	"context"
	"sort"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

const maxTags = 10

type CabinetInput struct {
	CorpusID int64
	Floor    int
	Name     string
	Tags     []string
}

// CabinetUpdate: Tags != nil заменяет весь набор меток.
type CabinetUpdate struct {
	Floor *int
	Name  *string
	Tags  *[]string
}

func (s *Service) CreateCabinet(ctx context.Context, in CabinetInput) (models.Cabinet, error) {
	if len(in.Tags) > maxTags {
		return models.Cabinet{}, Validationf("cabinet can have at most %d tags", maxTags)
	}
	var id int64
	err := s.tx(ctx, func(q db.Querier) error {
		corpus, err := getCorpus(ctx, q, in.CorpusID)
		if err != nil {
			return err
		}
		if err := checkCabinetName(ctx, q, corpus.ID, in.Name, 0); err != nil {
			return err
		}
		id, err = db.CreateCabinet(ctx, q, models.Cabinet{
			SchoolID: corpus.SchoolID, CorpusID: corpus.ID, Floor: in.Floor, Name: in.Name,
		})
		if err != nil {
			return err
		}
		return setCabinetTags(ctx, q, id, in.Tags)
	})
	if err != nil {
		return models.Cabinet{}, err
	}
	return getCabinet(ctx, s.db, id)
}

func (s *Service) UpdateCabinet(ctx context.Context, id int64, upd CabinetUpdate) (models.Cabinet, error) {
	if upd.Tags != nil && len(*upd.Tags) > maxTags {
		return models.Cabinet{}, Validationf("cabinet can have at most %d tags", maxTags)
	}
	err := s.tx(ctx, func(q db.Querier) error {
		c, err := getCabinet(ctx, q, id)
		if err != nil {
			return err
		}
		if upd.Name != nil && *upd.Name != c.Name {
			if err := checkCabinetName(ctx, q, c.CorpusID, *upd.Name, c.ID); err != nil {
				return err
			}
			c.Name = *upd.Name
		}
		if upd.Floor != nil {
			c.Floor = *upd.Floor
		}
		if err := db.UpdateCabinet(ctx, q, c); err != nil {
			return err
		}
		if upd.Tags != nil {
			return setCabinetTags(ctx, q, c.ID, *upd.Tags)
		}
		return nil
	})
	if err != nil {
		return models.Cabinet{}, err
	}
	return getCabinet(ctx, s.db, id)
}

func checkCabinetName(ctx context.Context, q db.Querier, corpusID int64, name string, self int64) error {
	v, err := db.CabinetByName(ctx, q, corpusID, name)
	if err != nil {
		return err
	}
	if v != nil && v.ID != self {
		return Conflictf("Cabinet with name %q already exists in corpus %d", name, corpusID)
	}
	return nil
}

func setCabinetTags(ctx context.Context, q db.Querier, cabinetID int64, labels []string) error {
	ids, err := db.EnsureTags(ctx, q, uniqueLabels(labels))
	if err != nil {
		return err
	}
	return db.SetCabinetTags(ctx, q, cabinetID, ids)
}

// uniqueLabels убирает повторы, сохраняя порядок.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// FreeCabinets кабинеты корпуса (на этаже, если задан), в которых нет урока
// в этот день и, если задан, в этот номер урока.
func (s *Service) FreeCabinets(ctx context.Context, corpusID int64, day int, lessonNumber, floor *int) ([]models.Cabinet, error) {
	if day < 1 || day > 7 {
		return nil, Validationf("day_of_week must be in [1, 7]")
	}
	if _, err := getCorpus(ctx, s.db, corpusID); err != nil {
		return nil, err
	}
	all, err := db.ListCabinetsByCorpus(ctx, s.db, corpusID, floor)
	if err != nil {
		return nil, err
	}
	busy, err := db.OccupiedCabinetIDs(ctx, s.db, corpusID, day, lessonNumber)
	if err != nil {
		return nil, err
	}
	return freeOf(all, busy), nil
}

// freeOf: разность множеств: all без кабинетов из busy, порядок по id.
func freeOf(all []models.Cabinet, busy []int64) []models.Cabinet {
	taken := make(map[int64]struct{}, len(busy))
	for _, id := range busy {
		taken[id] = struct{}{}
	}
	out := make([]models.Cabinet, 0, len(all))
	for _, c := range all {
		if _, ok := taken[c.ID]; !ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
