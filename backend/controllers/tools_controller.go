package controllers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"viadocs/backend/config"
	"viadocs/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// compressionSettings maps the requested mode to a Ghostscript quality preset.
var compressionSettings = map[string]string{
	"extreme":     "/screen",  // smallest file size
	"recommended": "/ebook",   // good balance
	"low":         "/printer", // higher quality
}

type ToolsController struct {
	Cfg *config.Config
}

func NewToolsController(cfg *config.Config) *ToolsController {
	return &ToolsController{Cfg: cfg}
}

// CompressPDF godoc
// @Summary Compress a PDF
// @Description Re-encodes the uploaded PDF through Ghostscript at the requested quality preset
// @Tags tools
// @Accept mpfd
// @Produce application/pdf
// @Param file formData file true "PDF file"
// @Param mode formData string false "Compression level (extreme|recommended|low)" default(recommended)
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /tools/pdf-compress [post]
func (tc *ToolsController) CompressPDF(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "No file uploaded")
	}
	if file.Filename == "" {
		return utils.BadRequest(c, utils.CodeValidation, "No file selected")
	}

	filename := filepath.Base(file.Filename)
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return utils.BadRequest(c, utils.CodeValidation, "Only PDF files are supported")
	}

	workDir, err := os.MkdirTemp("", "pdf-compress-")
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not create workspace")
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, filename)
	if err := c.SaveFile(file, inputPath); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not save file")
	}

	mode := strings.ToLower(c.FormValue("mode", "recommended"))
	setting, ok := compressionSettings[mode]
	if !ok {
		setting = compressionSettings["recommended"]
	}

	outputName := "compressed_" + filename
	outputPath := filepath.Join(workDir, outputName)

	cmd := exec.Command("gs",
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS="+setting,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile="+outputPath,
		inputPath,
	)
	if err := cmd.Run(); err != nil {
		return utils.InternalServerError(c, utils.CodeProcessing,
			"Compression failed. Ensure Ghostscript is installed.")
	}

	originalInfo, err := os.Stat(inputPath)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeProcessing, "Compression failed")
	}
	compressedInfo, err := os.Stat(outputPath)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeProcessing, "Compression failed")
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return utils.InternalServerError(c, utils.CodeProcessing, "Compression failed")
	}

	c.Set("x-original-size-mb", fmt.Sprintf("%.2f", float64(originalInfo.Size())/(1024*1024)))
	c.Set("x-compressed-size-mb", fmt.Sprintf("%.2f", float64(compressedInfo.Size())/(1024*1024)))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+outputName+`"`)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}

// PDFToImage godoc
// @Summary Convert a PDF to images
// @Description Rasterizes each page through Ghostscript and returns a zip of PNGs
// @Tags tools
// @Accept mpfd
// @Produce application/zip
// @Param file formData file true "PDF file"
// @Success 200 {file} binary
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /tools/pdf-to-image [post]
func (tc *ToolsController) PDFToImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, utils.CodeValidation, "No file part in request")
	}
	if file.Filename == "" {
		return utils.BadRequest(c, utils.CodeValidation, "No selected file")
	}

	workDir, err := os.MkdirTemp("", "pdf-to-image-")
	if err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not create workspace")
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, inputPath); err != nil {
		return utils.InternalServerError(c, utils.CodeServer, "Could not save file")
	}

	cmd := exec.Command("gs",
		"-sDEVICE=png16m",
		"-r150",
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile="+filepath.Join(workDir, "page_%d.png"),
		inputPath,
	)
	if err := cmd.Run(); err != nil {
		return utils.InternalServerError(c, utils.CodeProcessing,
			"Conversion failed. Ensure Ghostscript is installed.")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	pages := 0
	for i := 1; ; i++ {
		pagePath := filepath.Join(workDir, fmt.Sprintf("page_%d.png", i))
		data, err := os.ReadFile(pagePath)
		if err != nil {
			break
		}

		w, err := zw.Create(fmt.Sprintf("page_%d.png", i))
		if err != nil {
			return utils.InternalServerError(c, utils.CodeProcessing, "Conversion failed")
		}
		if _, err := w.Write(data); err != nil {
			return utils.InternalServerError(c, utils.CodeProcessing, "Conversion failed")
		}
		pages++
	}

	if err := zw.Close(); err != nil || pages == 0 {
		return utils.InternalServerError(c, utils.CodeProcessing, "Conversion failed")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="pages.zip"`)
	c.Set(fiber.HeaderContentType, "application/zip")
	return c.Send(buf.Bytes())
}
