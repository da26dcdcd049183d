package repository

import (
	"context"
	"fmt"

	"orchid-shop/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrchidRepository interface {
	Seed(ctx context.Context) error
	FindAll(ctx context.Context) ([]*model.Orchid, error)
	FindByID(ctx context.Context, id uint) (*model.Orchid, error)
	FindMany(ctx context.Context, ids []uint) ([]*model.Orchid, error)
	FindByName(ctx context.Context, name string) (*model.Orchid, error)
	FindByCategory(ctx context.Context, categoryID uint) ([]*model.Orchid, error)
	FindByNatural(ctx context.Context, isNatural bool) ([]*model.Orchid, error)
	FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Orchid, error)
	SearchByName(ctx context.Context, fragment string) ([]*model.Orchid, error)
	SearchByDescription(ctx context.Context, fragment string) ([]*model.Orchid, error)
	FindAllSortedByPrice(ctx context.Context, ascending bool) ([]*model.Orchid, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	CountByCategory(ctx context.Context, categoryID uint) (int64, error)
	Create(ctx context.Context, orchid *model.Orchid) error
	Update(ctx context.Context, orchid *model.Orchid) error
	Delete(ctx context.Context, id uint) error
}

type orchidRepoImpl struct {
	db *gorm.DB
}

func NewOrchidRepository(db *gorm.DB) OrchidRepository {
	return &orchidRepoImpl{
		db: db,
	}
}

type seedOrchid struct {
	category    string
	name        string
	description string
	url         string
	price       string
	natural     bool
}

var sampleCatalog = []seedOrchid{
	{"Phalaenopsis", "Phalaenopsis White Cascade", "Long-lasting white moth orchid on a twin spike", "https://images.example.com/orchids/phal-white.jpg", "45.00", true},
	{"Phalaenopsis", "Phalaenopsis Pink Dawn", "Blush pink blooms with a darker lip", "https://images.example.com/orchids/phal-pink.jpg", "39.50", true},
	{"Dendrobium", "Dendrobium Nobile", "Cane orchid that flowers along the stem in spring", "https://images.example.com/orchids/dendro-nobile.jpg", "28.00", true},
	{"Cattleya", "Cattleya Golden Queen", "Fragrant ruffled corsage orchid", "https://images.example.com/orchids/cattleya-gold.jpg", "62.00", true},
	{"Vanda", "Vanda Blue Magic", "Silk arrangement in a glazed pot", "https://images.example.com/orchids/vanda-blue.jpg", "25.00", false},
}

// Seed inserts the sample categories and orchids, skipping names that already exist.
func (r *orchidRepoImpl) Seed(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		names := make([]string, 0, len(sampleCatalog))
		seen := make(map[string]bool)
		for _, s := range sampleCatalog {
			if !seen[s.category] {
				seen[s.category] = true
				names = append(names, s.category)
			}
		}

		categories := make([]model.Category, len(names))
		for i, name := range names {
			categories[i] = model.Category{Name: name}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}

		var stored []model.Category
		if err := tx.Where("name IN ?", names).Find(&stored).Error; err != nil {
			return fmt.Errorf("load seeded categories: %w", err)
		}
		categoryIDs := make(map[string]uint, len(stored))
		for _, c := range stored {
			categoryIDs[c.Name] = c.ID
		}

		orchids := make([]model.Orchid, 0, len(sampleCatalog))
		for _, s := range sampleCatalog {
			orchids = append(orchids, model.Orchid{
				Name:        s.name,
				Description: s.description,
				URL:         s.url,
				Price:       decimal.RequireFromString(s.price),
				IsNatural:   s.natural,
				CategoryID:  categoryIDs[s.category],
			})
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&orchids).Error
	})
}

func (r *orchidRepoImpl) FindAll(ctx context.Context) ([]*model.Orchid, error) {
	var orchids []*model.Orchid
	err := r.db.WithContext(ctx).Order("id").Find(&orchids).Error
	if err != nil {
		return nil, err
	}

	return orchids, nil
}

func (r *orchidRepoImpl) FindByID(ctx context.Context, id uint) (*model.Orchid, error) {
	var orchid model.Orchid
	err := r.db.WithContext(ctx).First(&orchid, id).Error
	if err != nil {
		return nil, err
	}

	return &orchid, nil
}

func (r *orchidRepoImpl) FindMany(ctx context.Context, ids []uint) ([]*model.Orchid, error) {
	var orchids []*model.Orchid
	if len(ids) == 0 {
		return orchids, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&orchids).
		Error
	if err != nil {
		return nil, err
	}

	return orchids, nil
}

func (r *orchidRepoImpl) FindByName(ctx context.Context, name string) (*model.Orchid, error) {
	var orchid model.Orchid
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&orchid).Error
	if err != nil {
		return nil, err
	}

	return &orchid, nil
}

func (r *orchidRepoImpl) FindByCategory(ctx context.Context, categoryID uint) ([]*model.Orchid, error) {
	return r.findWhere(ctx, "category_id = ?", categoryID)
}

func (r *orchidRepoImpl) FindByNatural(ctx context.Context, isNatural bool) ([]*model.Orchid, error) {
	return r.findWhere(ctx, "is_natural = ?", isNatural)
}

func (r *orchidRepoImpl) FindByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]*model.Orchid, error) {
	return r.findWhere(ctx, "price BETWEEN ? AND ?", min, max)
}

func (r *orchidRepoImpl) SearchByName(ctx context.Context, fragment string) ([]*model.Orchid, error) {
	return r.findWhere(ctx, fmt.Sprintf(likeContains, "name"), containsPattern(fragment))
}

func (r *orchidRepoImpl) SearchByDescription(ctx context.Context, fragment string) ([]*model.Orchid, error) {
	return r.findWhere(ctx, fmt.Sprintf(likeContains, "description"), containsPattern(fragment))
}

func (r *orchidRepoImpl) findWhere(ctx context.Context, query string, args ...any) ([]*model.Orchid, error) {
	var orchids []*model.Orchid
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("id").
		Find(&orchids).Error
	if err != nil {
		return nil, err
	}

	return orchids, nil
}

func (r *orchidRepoImpl) FindAllSortedByPrice(ctx context.Context, ascending bool) ([]*model.Orchid, error) {
	var orchids []*model.Orchid
	err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "price"}, Desc: !ascending}).
		Order("id").
		Find(&orchids).Error
	if err != nil {
		return nil, err
	}

	return orchids, nil
}

func (r *orchidRepoImpl) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Orchid{}).
		Where("name = ?", name).
		Count(&count).Error

	return count > 0, err
}

func (r *orchidRepoImpl) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Orchid{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error

	return count, err
}

func (r *orchidRepoImpl) Create(ctx context.Context, orchid *model.Orchid) error {
	return r.db.WithContext(ctx).Create(orchid).Error
}

func (r *orchidRepoImpl) Update(ctx context.Context, orchid *model.Orchid) error {
	return r.db.WithContext(ctx).Save(orchid).Error
}

func (r *orchidRepoImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Orchid{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
