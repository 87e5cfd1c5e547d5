package handlers

import (
	"errors"
	"net/http"

	"pointsadmin/internal/apperrors"
	"pointsadmin/internal/export"
	"pointsadmin/internal/handlers/render"
	"pointsadmin/internal/logger"
)

type groupItem struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Remark  string `json:"remark"`
	Contact string `json:"contact"`
	WebDir  string `json:"web_dir"`
	DataDir string `json:"data_dir"`
}

func toGroupItem(e export.SettingsEntry) groupItem {
	return groupItem{
		Key:     e.Key,
		Name:    e.Name,
		Remark:  e.Remark,
		Contact: e.Contact,
		WebDir:  e.WebDir,
		DataDir: e.DataDir,
	}
}

func handleListGroups(store groupStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries := store.List()

		items := make([]groupItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, toGroupItem(e))
		}
		render.JSON(w, items)
	})
}

func handleGetGroup(store groupStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.Get(r.PathValue("key"))

		switch {
		case err == nil:
			render.JSON(w, toGroupItem(entry))
		case errors.Is(err, apperrors.ErrSettingsKeyNotFound):
			render.ServiceError(w, "Group not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSetGroup(store groupStore, l logger.Logger) http.Handler {
	type request struct {
		Name    string `json:"name" validate:"required"`
		Remark  string `json:"remark"`
		Contact string `json:"contact"`
		WebDir  string `json:"web_dir"`
		DataDir string `json:"data_dir"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		entry := export.SettingsEntry{
			Key:     r.PathValue("key"),
			Name:    req.Name,
			Remark:  req.Remark,
			Contact: req.Contact,
			WebDir:  req.WebDir,
			DataDir: req.DataDir,
		}

		switch err := store.Set(entry); {
		case err == nil:
			render.JSON(w, toGroupItem(entry))
		case errors.Is(err, apperrors.ErrSettingsKeyEmpty):
			render.ServiceError(w, "Group key must not be empty", http.StatusBadRequest)
		default:
			l.Error("Failed to save group", "key", entry.Key, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDeleteGroup(store groupStore, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")

		switch err := store.Delete(key); {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrSettingsKeyNotFound):
			render.ServiceError(w, "Group not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrSettingsKeyProtected):
			render.ServiceError(w, "Default group can not be deleted", http.StatusForbidden)
		default:
			l.Error("Failed to delete group", "key", key, "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
