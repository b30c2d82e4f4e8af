package service

import (
	"context"
	"strconv"

	"cardbridge/internal/models"
	"cardbridge/pkg/gateway"
)

// ContractService wraps the recurring-contract lifecycle: zero-amount setup
// authorizations and contract disablement.
type ContractService struct {
	cards CardStore
	gw    *gateway.Gateway
}

func NewContractService(cards CardStore, gw *gateway.Gateway) *ContractService {
	return &ContractService{cards: cards, gw: gw}
}

type RegisterCardInput struct {
	UserID        uint
	EncryptedData string
}

func (s *ContractService) RegisterCard(in RegisterCardInput) (*models.CreditCard, error) {
	card := &models.CreditCard{
		UserID:        in.UserID,
		EncryptedData: in.EncryptedData,
	}
	if err := s.cards.Create(card); err != nil {
		return nil, err
	}
	return card, nil
}

// AddContract sets up a recurring contract for the card and returns the
// stored recurring reference.
func (s *ContractService) AddContract(ctx context.Context, cardID uint, shopperIP string) (string, error) {
	card, err := s.cards.GetByID(cardID)
	if err != nil {
		return "", err
	}
	src := newCardSource(card, s.cards)
	userID := strconv.FormatUint(uint64(card.UserID), 10)
	return s.gw.SetupContract(ctx, src, userID, card.User.Email, shopperIP)
}

func (s *ContractService) DisableContract(ctx context.Context, cardID uint) error {
	card, err := s.cards.GetByID(cardID)
	if err != nil {
		return err
	}
	if !card.HasRecurringContract() {
		return &gateway.InputError{Reason: "card has no recurring contract to disable"}
	}
	return s.gw.DisableContract(ctx, newCardSource(card, s.cards))
}
