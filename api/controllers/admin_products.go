package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neonshoplabs/neonshop-backend/api/responses"
	"github.com/neonshoplabs/neonshop-backend/api/validators"
	"github.com/neonshoplabs/neonshop-backend/internal/products"
	"github.com/neonshoplabs/neonshop-backend/pkg/enums"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
)

type createProductRequest struct {
	SKU                 string   `json:"sku" validate:"required"`
	Name                string   `json:"name" validate:"required"`
	Slug                string   `json:"slug" validate:"required"`
	Description         *string  `json:"description,omitempty"`
	CategoryID          string   `json:"category_id" validate:"required,uuid"`
	PriceCents          int      `json:"price_cents" validate:"required,min=0"`
	CompareAtPriceCents *int     `json:"compare_at_price_cents,omitempty"`
	Currency            string   `json:"currency,omitempty"`
	Stock               int      `json:"stock" validate:"min=0"`
	Status              string   `json:"status,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	ImageURL            *string  `json:"image_url,omitempty"`
}

type updateProductRequest struct {
	Name                *string  `json:"name,omitempty"`
	Slug                *string  `json:"slug,omitempty"`
	Description         *string  `json:"description,omitempty"`
	CategoryID          *string  `json:"category_id,omitempty"`
	PriceCents          *int     `json:"price_cents,omitempty"`
	CompareAtPriceCents *int     `json:"compare_at_price_cents,omitempty"`
	Currency            *string  `json:"currency,omitempty"`
	Stock               *int     `json:"stock,omitempty"`
	Status              *string  `json:"status,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	ImageURL            *string  `json:"image_url,omitempty"`
}

func AdminProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := productFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseProductStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		page, err := svc.AdminList(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func AdminProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		categoryID, err := validators.ParsePathUUID(body.CategoryID, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.CreateProductInput{
			SKU:                 body.SKU,
			Name:                body.Name,
			Slug:                body.Slug,
			Description:         body.Description,
			CategoryID:          categoryID,
			PriceCents:          body.PriceCents,
			CompareAtPriceCents: body.CompareAtPriceCents,
			Currency:            enums.Currency(body.Currency),
			Stock:               body.Stock,
			Status:              enums.ProductStatus(body.Status),
			Tags:                body.Tags,
			ImageURL:            body.ImageURL,
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func AdminProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := products.UpdateProductInput{
			Name:                body.Name,
			Slug:                body.Slug,
			Description:         body.Description,
			PriceCents:          body.PriceCents,
			CompareAtPriceCents: body.CompareAtPriceCents,
			Stock:               body.Stock,
			Tags:                body.Tags,
			ImageURL:            body.ImageURL,
		}
		if body.CategoryID != nil {
			categoryID, err := validators.ParsePathUUID(*body.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = &categoryID
		}
		if body.Currency != nil {
			currency := enums.Currency(*body.Currency)
			input.Currency = &currency
		}
		if body.Status != nil {
			status := enums.ProductStatus(*body.Status)
			input.Status = &status
		}

		dto, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func AdminProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
