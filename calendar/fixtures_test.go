package calendar

import (
	"github.com/tailorworks/alterations-api/models"
	"gorm.io/datatypes"
)

func pickupOnlyOrder(id, dueDate string) models.Order {
	return models.Order{
		ID:         id,
		ClientInfo: models.ClientInfo{Name: "Ana Ruiz"},
		Status:     models.StatusPending,
		DueDate:    dueDate,
		Garments: datatypes.JSONSlice[models.Garment]{
			{GarmentInfo: models.GarmentInfo{Type: "Pants", Quantity: 1}},
		},
	}
}

// bridalOrder has one wedding dress with a wedding date and two fittings, the
// first of them completed.
func bridalOrder(id string) models.Order {
	return models.Order{
		ID:         id,
		ClientInfo: models.ClientInfo{Name: "Maya Chen"},
		Status:     models.StatusInProgress,
		DueDate:    "2024-09-10",
		Garments: datatypes.JSONSlice[models.Garment]{
			{
				GarmentInfo: models.GarmentInfo{
					Type:     models.GarmentWeddingDress,
					Quantity: 1,
					BridalInfo: &models.BridalInfo{
						WeddingDate: "2024-09-15",
						FittingSessions: []models.FittingSession{
							{ID: "1717000000000", Date: "2024-08-01T10:00:00Z", Type: models.FittingInitial, Completed: true},
							{ID: "1717000000001", Date: "2024-08-20T15:30:00Z", Type: models.FittingFinal, Notes: "bring shoes"},
						},
					},
				},
			},
		},
	}
}

// twoDressOrder has two wedding dresses and a veil-less plain garment.
func twoDressOrder(id string) models.Order {
	order := bridalOrder(id)
	second := models.Garment{
		GarmentInfo: models.GarmentInfo{
			Type:     models.GarmentWeddingDress,
			Quantity: 1,
			BridalInfo: &models.BridalInfo{
				WeddingDate: "2024-09-15",
				FittingSessions: []models.FittingSession{
					{ID: "1717000000000", Date: "2024-08-05T11:00:00Z", Type: models.FittingCustom, CustomType: "Hem"},
				},
			},
		},
	}
	plain := models.Garment{GarmentInfo: models.GarmentInfo{Type: "Suit", Quantity: 1}}
	order.Garments = append(order.Garments, second, plain)
	return order
}
