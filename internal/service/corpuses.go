package service

import (
	"context"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

type CorpusInput struct {
	SchoolID    int64
	Name        string
	Address     string
	CanteenText *string
}

type CorpusUpdate struct {
	Name        *string
	Address     *string
	CanteenText *string
}

func (s *Service) CreateCorpus(ctx context.Context, in CorpusInput) (models.Corpus, error) {
	var out models.Corpus
	err := s.tx(ctx, func(q db.Querier) error {
		if _, err := getSchool(ctx, q, in.SchoolID); err != nil {
			return err
		}
		c := models.Corpus{SchoolID: in.SchoolID, Name: in.Name, Address: in.Address, CanteenText: in.CanteenText}
		if err := checkCorpusUnique(ctx, q, c, true, true); err != nil {
			return err
		}
		id, err := db.CreateCorpus(ctx, q, c)
		if err != nil {
			return err
		}
		c.ID = id
		out = c
		return nil
	})
	return out, err
}

func (s *Service) UpdateCorpus(ctx context.Context, id int64, upd CorpusUpdate) (models.Corpus, error) {
	var out models.Corpus
	err := s.tx(ctx, func(q db.Querier) error {
		c, err := getCorpus(ctx, q, id)
		if err != nil {
			return err
		}
		nameChanged := upd.Name != nil && *upd.Name != c.Name
		addrChanged := upd.Address != nil && *upd.Address != c.Address
		if upd.Name != nil {
			c.Name = *upd.Name
		}
		if upd.Address != nil {
			c.Address = *upd.Address
		}
		if upd.CanteenText != nil {
			c.CanteenText = upd.CanteenText
		}
		if err := checkCorpusUnique(ctx, q, c, nameChanged, addrChanged); err != nil {
			return err
		}
		if err := db.UpdateCorpus(ctx, q, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// checkCorpusUnique сверяет имя и адрес с другими корпусами той же школы.
func checkCorpusUnique(ctx context.Context, q db.Querier, c models.Corpus, name, address bool) error {
	if name {
		v, err := db.CorpusByName(ctx, q, c.SchoolID, c.Name)
		if err != nil {
			return err
		}
		if v != nil && v.ID != c.ID {
			return Conflictf("Corpus with name %q already exists in school %d", c.Name, c.SchoolID)
		}
	}
	if address {
		v, err := db.CorpusByAddress(ctx, q, c.SchoolID, c.Address)
		if err != nil {
			return err
		}
		if v != nil && v.ID != c.ID {
			return Conflictf("Corpus with address %q already exists in school %d", c.Address, c.SchoolID)
		}
	}
	return nil
}
