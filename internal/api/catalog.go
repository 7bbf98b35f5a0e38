package api

import (
	"net/http"
	"strconv"

	"github.com/safar/printshop/internal/models"
	"github.com/safar/printshop/internal/store"
)

// Catalog routes take either a numeric id or a slug in {ref}.

func (s *Server) lookupCategory(r *http.Request) (*models.Category, error) {
	ref := r.PathValue("ref")
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetCategory(r.Context(), s.db, id)
	}
	return store.GetCategoryBySlug(r.Context(), s.db, ref)
}

func (s *Server) lookupProduct(r *http.Request) (*models.Product, error) {
	ref := r.PathValue("ref")
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetProduct(r.Context(), s.db, id)
	}
	return store.GetProductBySlug(r.Context(), s.db, ref)
}

func (s *Server) handleListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := queryID(r, "parent")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		filter := store.CategoryFilter{
			ParentID: parentID,
			TopLevel: r.URL.Query().Get("top") == "true",
		}
		categories, err := store.ListCategories(r.Context(), s.db, filter)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, categories)
	}
}

func (s *Server) handleGetCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := s.lookupCategory(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, category)
	}
}

func (s *Server) handleCreateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in store.CategoryInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		category, err := store.CreateCategory(r.Context(), s.db, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, category)
	}
}

func (s *Server) handleUpdateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := s.lookupCategory(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		var in store.CategoryInput
		if err := s.decode(r, &in); err != nil {
			s.respondErr(w, r, err)
			return
		}

		category, err := store.UpdateCategory(r.Context(), s.db, current.ID, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, category)
	}
}

func (s *Server) handleDeleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := s.lookupCategory(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := store.DeleteCategory(r.Context(), s.db, category.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": category.ID})
	}
}

func (s *Server) handleListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := queryID(r, "category")
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		// Inactive products stay hidden from the storefront; admins may
		// opt into them with active=false.
		activeOnly := true
		if claims := claimsFrom(r.Context()); claims != nil && claims.IsAdmin() {
			activeOnly = r.URL.Query().Get("active") != "false"
		}

		page, pageSize, err := pageParams(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		filter := store.ProductFilter{
			CategoryID: categoryID,
			Query:      r.URL.Query().Get("q"),
			ActiveOnly: activeOnly,
		}
		result, err := store.ListProducts(r.Context(), s.db, filter, page, pageSize)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleGetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := s.lookupProduct(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, product)
	}
}

func (s *Server) decodeProduct(r *http.Request) (store.ProductInput, error) {
	var in store.ProductInput
	if err := s.decode(r, &in); err != nil {
		return in, err
	}
	if in.Price.IsNegative() {
		return in, badRequest("price must be at least 0")
	}
	return in, nil
}

func (s *Server) handleCreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := s.decodeProduct(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		product, err := store.CreateProduct(r.Context(), s.db, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, product)
	}
}

func (s *Server) handleUpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := s.lookupProduct(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		in, err := s.decodeProduct(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		product, err := store.UpdateProduct(r.Context(), s.db, current.ID, in)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, product)
	}
}

func (s *Server) handleDeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := s.lookupProduct(r)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}

		if err := store.DeleteProduct(r.Context(), s.db, product.ID); err != nil {
			s.respondErr(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]int64{"deleted": product.ID})
	}
}
