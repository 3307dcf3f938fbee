package controllers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"viadocs/backend/config"
	"viadocs/backend/models"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// allowedImageExts задает разрешенные расширения для картинок документов
var allowedImageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

type DocsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewDocsController(db *gorm.DB, cfg *config.Config) *DocsController {
	return &DocsController{DB: db, Cfg: cfg}
}

func docJSON(doc *models.Document) fiber.Map {
	return fiber.Map{
		"id":         doc.ID,
		"name":       doc.Name,
		"content":    doc.Content,
		"favorite":   doc.Favorite,
		"created_at": doc.CreatedAt,
		"updated_at": doc.UpdatedAt,
	}
}

// CheckName reports whether a document name is already taken by this owner.
// Name uniqueness is scoped per owner, not global.
func (dc *DocsController) CheckName(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Name is required")
	}

	var count int64
	if err := dc.DB.Model(&models.Document{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	return c.JSON(fiber.Map{"exists": count > 0})
}

// CreateDoc godoc
// @Summary Create a document
// @Description Creates a named document for the logged-in user
// @Tags docs
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /docs/my-docs [post]
func (dc *DocsController) CreateDoc(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name     string `json:"name"`
		Content  string `json:"content"`
		Favorite bool   `json:"favorite"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Document name required")
	}

	var count int64
	if err := dc.DB.Model(&models.Document{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}
	if count > 0 {
		return utils.BadRequest(c, utils.CodeConflict, "Document name already exists")
	}

	doc := models.Document{
		UserID:   userID,
		Name:     name,
		Content:  input.Content,
		Favorite: input.Favorite,
	}
	if err := dc.DB.Create(&doc).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not create document")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      doc.ID,
		"message": "Document created",
	})
}

// ListDocs returns all of the owner's documents, most recently updated first.
func (dc *DocsController) ListDocs(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var docs []models.Document
	if err := dc.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&docs).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	out := make([]fiber.Map, 0, len(docs))
	for i := range docs {
		out = append(out, docJSON(&docs[i]))
	}
	return c.JSON(out)
}

// findOwned looks a document up under the ownership-scoped predicate, so a
// non-owner can never learn whether the ID exists.
func (dc *DocsController) findOwned(docID string, userID uint) (*models.Document, error) {
	id, err := strconv.ParseUint(docID, 10, 64)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var doc models.Document
	if err := dc.DB.Where("id = ? AND user_id = ?", uint(id), userID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (dc *DocsController) GetDoc(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	doc, err := dc.findOwned(c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Document not found")
		}
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	return c.JSON(docJSON(doc))
}

// UpdateDoc updates name/content/favorite and always refreshes updated_at.
func (dc *DocsController) UpdateDoc(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name     *string `json:"name"`
		Content  *string `json:"content"`
		Favorite *bool   `json:"favorite"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "Cannot parse JSON")
	}

	doc, err := dc.findOwned(c.Params("id"), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Document not found")
		}
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return utils.BadRequest(c, utils.CodeValidation, "Document name required")
		}
		if name != doc.Name {
			var count int64
			dc.DB.Model(&models.Document{}).
				Where("user_id = ? AND name = ?", userID, name).
				Count(&count)
			if count > 0 {
				return utils.BadRequest(c, utils.CodeConflict, "Document name already exists")
			}
		}
		updates["name"] = name
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.Favorite != nil {
		updates["favorite"] = *input.Favorite
	}

	if len(updates) == 0 {
		return utils.BadRequest(c, utils.CodeValidation, "No valid fields to update")
	}

	if err := dc.DB.Model(doc).Updates(updates).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update document")
	}

	return c.JSON(fiber.Map{"message": "Document updated successfully"})
}

func (dc *DocsController) DeleteDoc(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFound(c, "Document not found")
	}

	res := dc.DB.Where("id = ? AND user_id = ?", uint(id), userID).Delete(&models.Document{})
	if res.Error != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not delete document")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Document not found")
	}

	return c.JSON(fiber.Map{"message": "Document deleted"})
}

// ToggleFavorite flips the flag with a single conditional negation so two
// concurrent toggles can't lose an update.
func (dc *DocsController) ToggleFavorite(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.NotFound(c, "Document not found")
	}

	res := dc.DB.Model(&models.Document{}).
		Where("id = ? AND user_id = ?", uint(id), userID).
		Update("favorite", gorm.Expr("NOT favorite"))
	if res.Error != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not update document")
	}
	if res.RowsAffected == 0 {
		return utils.NotFound(c, "Document not found")
	}

	doc, err := dc.findOwned(c.Params("id"), userID)
	if err != nil {
		return utils.NotFound(c, "Document not found")
	}

	return c.JSON(fiber.Map{"favorite": doc.Favorite})
}

// Summary returns the home dashboard counters plus small recent/favorite previews.
func (dc *DocsController) Summary(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserID(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var totalDocs, favoriteCount int64
	if err := dc.DB.Model(&models.Document{}).
		Where("user_id = ?", userID).Count(&totalDocs).Error; err != nil {
		return utils.InternalServerError(c, utils.CodeDependency, "Could not query database")
	}
	dc.DB.Model(&models.Document{}).
		Where("user_id = ? AND favorite = ?", userID, true).Count(&favoriteCount)

	var recentDocs []models.Document
	dc.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").Limit(5).Find(&recentDocs)

	var favoriteDocs []models.Document
	dc.DB.Where("user_id = ? AND favorite = ?", userID, true).
		Order("updated_at DESC").Limit(5).Find(&favoriteDocs)

	recent := make([]fiber.Map, 0, len(recentDocs))
	for i := range recentDocs {
		recent = append(recent, docJSON(&recentDocs[i]))
	}
	favorites := make([]fiber.Map, 0, len(favoriteDocs))
	for i := range favoriteDocs {
		favorites = append(favorites, docJSON(&favoriteDocs[i]))
	}

	return c.JSON(fiber.Map{
		"total_docs":     totalDocs,
		"favorite_count": favoriteCount,
		"recent_docs":    recent,
		"favorite_docs":  favorites,
	})
}

// UploadImage stores a document illustration and returns its public URL.
func (dc *DocsController) UploadImage(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserID(c, dc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "No file provided")
	}
	if file.Filename == "" {
		return utils.BadRequest(c, utils.CodeValidation, "Empty filename")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return utils.BadRequest(c, utils.CodeValidation, "Invalid file type")
	}

	uploadDir := filepath.Join(dc.Cfg.UploadDir, "doc_images")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Failed to upload image")
	}

	filename := fmt.Sprintf("doc_%s_%s", uuid.New().String(), filepath.Base(file.Filename))
	if err := c.SaveFile(file, filepath.Join(uploadDir, filename)); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Failed to upload image")
	}

	return c.JSON(fiber.Map{"url": "/uploads/doc_images/" + filename})
}
