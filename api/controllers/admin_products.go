package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/vaporhaus/storefront-backend/api/middleware"
	"github.com/vaporhaus/storefront-backend/api/responses"
	"github.com/vaporhaus/storefront-backend/api/validators"
	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/internal/importer"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

const (
	importFormField  = "file"
	templateFileName = "product-import-template.xlsx"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AdminProductCreate decodes the full product form. Field rules live in catalog.ProductInput.
func AdminProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeProductInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

func AdminProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := decodeProductInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// AdminProductImport accepts a multipart upload under "file". Passing dryRun=true validates
// without writing.
func AdminProductImport(svc importer.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	maxBytes := int64(maxUploadMB) << 20
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "import file is too large").WithDetails(map[string]any{"maxUploadMB": maxUploadMB}))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile(importFormField)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required"))
			return
		}
		defer file.Close()

		format, err := importer.FormatFromFilename(header.Filename)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
			return
		}

		dryRun := false
		if raw := strings.TrimSpace(r.FormValue("dryRun")); raw != "" {
			if dryRun, err = strconv.ParseBool(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dryRun must be a boolean"))
				return
			}
		}

		ctx = logg.WithField(ctx, "import_file", header.Filename)
		result, err := svc.Import(ctx, file, format, importer.RunOptions{
			Source: "admin:" + middleware.UserIDFromContext(ctx),
			DryRun: dryRun,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminImportTemplate downloads the sample workbook.
func AdminImportTemplate(svc importer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := svc.Template()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render import template"))
			return
		}
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+templateFileName+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func decodeProductInput(r *http.Request) (catalog.ProductInput, error) {
	var input catalog.ProductInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return input, err
	}
	return input, nil
}
