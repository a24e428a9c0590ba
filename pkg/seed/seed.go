package seed

import (
	"log"

	"gorm.io/gorm"

	"cteskills_backend/internal/model"
)

func SeedPathways(db *gorm.DB) {
	pathways := []model.Pathway{
		{
			Name:        "Health Science",
			Description: "Medical procedures, patient care, health information, and therapeutic services.",
			Icon:        "Stethoscope",
		},
		{
			Name:        "Information Technology",
			Description: "Programming, networking, cybersecurity, and digital communications.",
			Icon:        "Monitor",
		},
		{
			Name:        "Manufacturing",
			Description: "Production, quality control, welding, machining, and industrial maintenance.",
			Icon:        "Factory",
		},
		{
			Name:        "Hospitality & Tourism",
			Description: "Culinary arts, lodging, travel and tourism, and event management.",
			Icon:        "UtensilsCrossed",
		},
		{
			Name:        "Architecture & Construction",
			Description: "Building trades, carpentry, electrical, plumbing, and HVAC.",
			Icon:        "HardHat",
		},
		{
			Name:        "Transportation",
			Description: "Automotive technology, collision repair, and diesel mechanics.",
			Icon:        "Car",
		},
	}

	for _, pathway := range pathways {
		result := db.FirstOrCreate(&pathway, model.Pathway{Name: pathway.Name})
		if result.Error != nil {
			log.Printf("Error creating pathway %s: %v", pathway.Name, result.Error)
		}
	}

	log.Println("Pathways seeded successfully!")
}

func SeedCategories(db *gorm.DB) {
	categories := []model.Category{
		{Name: "Tutorials"},
		{Name: "Demonstrations"},
		{Name: "Safety"},
		{Name: "Soft Skills"},
		{Name: "Industry Overview"},
		{Name: "Certifications"},
	}

	for _, category := range categories {
		result := db.FirstOrCreate(&category, model.Category{Name: category.Name})
		if result.Error != nil {
			log.Printf("Error creating category %s: %v", category.Name, result.Error)
		}
	}

	log.Println("Categories seeded successfully!")
}
