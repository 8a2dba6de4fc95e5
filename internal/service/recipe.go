package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/recipebox/backend/internal/apperr"
	"github.com/pageza/recipebox/backend/internal/cache"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/storage"
	"github.com/pageza/recipebox/backend/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const tracerName = "github.com/pageza/recipebox/backend/internal/service"

// RecipeService handles recipe operations. Reads go through the cache;
// writes invalidate it before and after touching the store.
type RecipeService struct {
	db      *gorm.DB
	cache   RecipeCache
	objects ObjectStore
	log     *zap.Logger
	tracer  trace.Tracer
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, recipeCache RecipeCache, objects ObjectStore, logger *zap.Logger) *RecipeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeService{
		db:      db,
		cache:   recipeCache,
		objects: objects,
		log:     logger.Named("recipes"),
		tracer:  otel.Tracer(tracerName),
	}
}

// Create stores the recipe, its steps and nutrition in one transaction and
// caches the result.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (_ *types.RecipeSnapshot, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Create")
	defer func() { endSpan(span, err) }()

	now := models.Now()
	recipe := &models.Recipe{
		ID:            uuid.New(),
		CreatedTS:     now,
		UpdatedTS:     now,
		AuthorID:      authorID,
		CookTimeInMin: *req.CookTimeInMin,
		PrepTimeInMin: *req.PrepTimeInMin,
		Title:         req.Title,
		Cuisine:       req.Cuisine,
		Servings:      *req.Servings,
		Ingredients:   models.StringArray(req.Ingredients),
	}
	recipe.RecomputeTotal()
	span.SetAttributes(attribute.String("recipe.id", recipe.ID.String()))

	steps := newSteps(recipe.ID, req.Steps)
	nutrition := req.NutritionInformation.Model(recipe.ID)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return fmt.Errorf("failed to create steps: %w", err)
			}
		}
		if err := tx.Create(&nutrition).Error; err != nil {
			return fmt.Errorf("failed to create nutrition information: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap := types.NewRecipeSnapshot(recipe, steps, &nutrition)
	s.populate(ctx, snap)

	s.log.Info("created recipe", zap.String("recipe_id", recipe.ID.String()), zap.String("author_id", authorID.String()))
	return &snap, nil
}

// Get returns the recipe with its latest image. The image lookup runs
// alongside the cache or store read.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (_ *types.RecipeDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Get", trace.WithAttributes(attribute.String("recipe.id", id.String())))
	defer func() { endSpan(span, err) }()

	var image *models.RecipeImage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := latestImage(gctx, s.db, id)
		image = img
		return err
	})

	snap, err := s.read(ctx, id)
	if werr := g.Wait(); err == nil && werr != nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}
	return &types.RecipeDetail{RecipeSnapshot: *snap, Image: types.NewImageRef(image)}, nil
}

// read serves the snapshot from the cache, falling back to the store and
// populating the cache on a miss.
func (s *RecipeService) read(ctx context.Context, id uuid.UUID) (*types.RecipeSnapshot, error) {
	key := id.String()

	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn("cache read failed, reading from store", zap.String("recipe_id", key), zap.Error(err))
	case ok:
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", true))
		cached.Normalize()
		return &cached, nil
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", false))

	// The generation must be observed before the store read so a write
	// committed in between invalidates this population.
	gen, genErr := s.cache.SnapshotGen(ctx, key)

	snap, err := loadSnapshot(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		s.log.Warn("cache generation read failed, not populating", zap.String("recipe_id", key), zap.Error(genErr))
		return snap, nil
	}
	s.logPopulate(key, s.cache.SetWithGen(ctx, key, *snap, gen))
	return snap, nil
}

// Update applies a partial update. Existence, ownership and payload are
// checked in that order before anything is invalidated or written.
func (s *RecipeService) Update(ctx context.Context, id, callerID uuid.UUID, req *types.UpdateRecipeRequest) (_ *types.RecipeSnapshot, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Update", trace.WithAttributes(attribute.String("recipe.id", id.String())))
	defer func() { endSpan(span, err) }()

	recipe, err := findRecipe(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != callerID {
		return nil, apperr.ErrNotAuthor
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := id.String()
	if err := s.cache.Invalidate(ctx, key); err != nil {
		return nil, fmt.Errorf("failed to invalidate cached recipe: %w", err)
	}

	req.Apply(recipe)
	recipe.UpdatedTS = models.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"updated_ts":        recipe.UpdatedTS,
			"cook_time_in_min":  recipe.CookTimeInMin,
			"prep_time_in_min":  recipe.PrepTimeInMin,
			"total_time_in_min": recipe.TotalTimeInMin,
			"title":             recipe.Title,
			"cuisine":           recipe.Cuisine,
			"servings":          recipe.Servings,
			"ingredients":       recipe.Ingredients,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}

		if req.Steps != nil {
			if err := tx.Where("recipe_id = ?", id).Delete(&models.Step{}).Error; err != nil {
				return fmt.Errorf("failed to delete steps: %w", err)
			}
			if steps := newSteps(id, *req.Steps); len(steps) > 0 {
				if err := tx.Create(&steps).Error; err != nil {
					return fmt.Errorf("failed to create steps: %w", err)
				}
			}
		}

		if req.NutritionInformation != nil {
			n := req.NutritionInformation.Model(id)
			res := tx.Model(&models.NutritionInformation{}).Where("recipe_id = ?", id).Updates(map[string]interface{}{
				"calories":               n.Calories,
				"cholesterol_in_mg":      n.CholesterolInMg,
				"sodium_in_mg":           n.SodiumInMg,
				"carbohydrates_in_grams": n.CarbohydratesInGrams,
				"protein_in_grams":       n.ProteinInGrams,
			})
			if res.Error != nil {
				return fmt.Errorf("failed to update nutrition information: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				if err := tx.Create(&n).Error; err != nil {
					return fmt.Errorf("failed to create nutrition information: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("cache invalidation after update failed", zap.String("recipe_id", key), zap.Error(err))
	}

	snap, err := loadSnapshot(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.populate(ctx, *snap)

	s.log.Info("updated recipe", zap.String("recipe_id", key))
	return snap, nil
}

// Delete removes the recipe rows, then the image objects. Object deletion
// failures are reported even though the rows are already gone.
func (s *RecipeService) Delete(ctx context.Context, id, callerID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Delete", trace.WithAttributes(attribute.String("recipe.id", id.String())))
	defer func() { endSpan(span, err) }()

	recipe, err := findRecipe(ctx, s.db, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return apperr.ErrNotAuthor
	}

	key := id.String()
	if err := s.cache.Invalidate(ctx, key); err != nil {
		return fmt.Errorf("failed to invalidate cached recipe: %w", err)
	}

	var images []models.RecipeImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Find(&images).Error; err != nil {
			return fmt.Errorf("failed to list images: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.NutritionInformation{}).Error; err != nil {
			return fmt.Errorf("failed to delete nutrition information: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Step{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete image records: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("cache invalidation after delete failed", zap.String("recipe_id", key), zap.Error(err))
	}

	var objErrs []error
	for _, img := range images {
		objectKey := storage.KeyFromURL(img.URL)
		if objectKey == "" {
			continue
		}
		if s.objects == nil {
			objErrs = append(objErrs, fmt.Errorf("no object store configured for %s", objectKey))
			continue
		}
		if err := s.objects.Delete(ctx, objectKey); err != nil {
			objErrs = append(objErrs, err)
		}
	}
	if err := errors.Join(objErrs...); err != nil {
		return fmt.Errorf("recipe %s deleted but image objects remain: %w", key, err)
	}

	s.log.Info("deleted recipe", zap.String("recipe_id", key), zap.Int("images", len(images)))
	return nil
}

// List returns every recipe, newest first. Listings bypass the cache.
func (s *RecipeService) List(ctx context.Context) (_ []types.RecipeDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.List")
	defer func() { endSpan(span, err) }()

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Order("created_ts DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	if len(recipes) == 0 {
		return nil, apperr.ErrNotFound
	}
	span.SetAttributes(attribute.Int("recipe.count", len(recipes)))
	return loadDetails(ctx, s.db, recipes)
}

// Latest returns the most recently created recipe.
func (s *RecipeService) Latest(ctx context.Context) (_ *types.RecipeDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "RecipeService.Latest")
	defer func() { endSpan(span, err) }()

	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Order("created_ts DESC").Limit(1).Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to get latest recipe: %w", err)
	}
	if len(recipes) == 0 {
		return nil, apperr.ErrNotFound
	}
	details, err := loadDetails(ctx, s.db, recipes)
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// populate caches snap under the current generation. Failures only log.
func (s *RecipeService) populate(ctx context.Context, snap types.RecipeSnapshot) {
	key := snap.ID.String()
	gen, err := s.cache.SnapshotGen(ctx, key)
	if err == nil {
		err = s.cache.SetWithGen(ctx, key, snap, gen)
	}
	s.logPopulate(key, err)
}

func (s *RecipeService) logPopulate(key string, err error) {
	switch {
	case errors.Is(err, cache.ErrNotAdmitted):
		s.log.Debug("cache did not admit recipe", zap.String("recipe_id", key))
	case err != nil:
		s.log.Warn("cache populate failed", zap.String("recipe_id", key), zap.Error(err))
	}
}

func newSteps(recipeID uuid.UUID, in []types.StepInput) []models.Step {
	steps := make([]models.Step, 0, len(in))
	for _, st := range in {
		steps = append(steps, models.Step{
			ID:       uuid.New(),
			Position: st.Position,
			Items:    st.Items,
			RecipeID: recipeID,
		})
	}
	return steps
}

func findRecipe(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	return &recipe, nil
}

func loadSnapshot(ctx context.Context, db *gorm.DB, id uuid.UUID) (*types.RecipeSnapshot, error) {
	recipe, err := findRecipe(ctx, db, id)
	if err != nil {
		return nil, err
	}

	var steps []models.Step
	if err := db.WithContext(ctx).Where("recipe_id = ?", id).Order("position ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}

	var nutrition []models.NutritionInformation
	if err := db.WithContext(ctx).Where("recipe_id = ?", id).Limit(1).Find(&nutrition).Error; err != nil {
		return nil, fmt.Errorf("failed to get nutrition information: %w", err)
	}
	var n *models.NutritionInformation
	if len(nutrition) > 0 {
		n = &nutrition[0]
	}

	snap := types.NewRecipeSnapshot(recipe, steps, n)
	return &snap, nil
}

func latestImage(ctx context.Context, db *gorm.DB, recipeID uuid.UUID) (*models.RecipeImage, error) {
	var images []models.RecipeImage
	err := db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Limit(1).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe image: %w", err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}

// loadDetails attaches steps, nutrition and the latest image to recipes with
// one query per table.
func loadDetails(ctx context.Context, db *gorm.DB, recipes []models.Recipe) ([]types.RecipeDetail, error) {
	ids := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}

	var steps []models.Step
	if err := db.WithContext(ctx).Where("recipe_id IN ?", ids).Order("position ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	var nutrition []models.NutritionInformation
	if err := db.WithContext(ctx).Where("recipe_id IN ?", ids).Find(&nutrition).Error; err != nil {
		return nil, fmt.Errorf("failed to get nutrition information: %w", err)
	}
	var images []models.RecipeImage
	if err := db.WithContext(ctx).Where("recipe_id IN ?", ids).Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipe images: %w", err)
	}

	stepsByRecipe := make(map[uuid.UUID][]models.Step, len(recipes))
	for _, st := range steps {
		stepsByRecipe[st.RecipeID] = append(stepsByRecipe[st.RecipeID], st)
	}
	nutritionByRecipe := make(map[uuid.UUID]*models.NutritionInformation, len(nutrition))
	for i := range nutrition {
		nutritionByRecipe[nutrition[i].RecipeID] = &nutrition[i]
	}
	imageByRecipe := make(map[uuid.UUID]*models.RecipeImage, len(images))
	for i := range images {
		if _, seen := imageByRecipe[images[i].RecipeID]; !seen {
			imageByRecipe[images[i].RecipeID] = &images[i]
		}
	}

	details := make([]types.RecipeDetail, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		details = append(details, types.RecipeDetail{
			RecipeSnapshot: types.NewRecipeSnapshot(r, stepsByRecipe[r.ID], nutritionByRecipe[r.ID]),
			Image:          types.NewImageRef(imageByRecipe[r.ID]),
		})
	}
	return details, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
