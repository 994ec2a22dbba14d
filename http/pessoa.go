package handler

import (
	"fmt"
	"net/http"

	"cadastro/db"

	"github.com/julienschmidt/httprouter"
)

type PessoaResource struct {
	repo   db.Repository[db.Pessoa]
	policy StatusPolicy
}

func NewPessoaResource(repo db.Repository[db.Pessoa], policy StatusPolicy) *PessoaResource {
	return &PessoaResource{repo: repo, policy: policy}
}

// Create answers 201 with a Location header and no body.
func (res *PessoaResource) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pessoa db.Pessoa
	if err := decode(r, &pessoa); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to save Pessoa", "pessoa", pessoa)

	if pessoa.Id != nil {
		res.policy.rejectCreate(w, r)
		return
	}

	result, err := res.repo.Save(r.Context(), pessoa)
	if err != nil {
		storeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/pessoas/%d", *result.Id))
	w.WriteHeader(http.StatusCreated)
}

func (res *PessoaResource) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var pessoa db.Pessoa
	if err := decode(r, &pessoa); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to update Pessoa", "pessoa", pessoa)

	if pessoa.Id == nil {
		res.policy.rejectUpdate(w, r, http.StatusNoContent)
		return
	}

	result, err := res.repo.Save(r.Context(), pessoa)
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

func (res *PessoaResource) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	logger(r.Context()).DebugContext(r.Context(), "REST request to get all Pessoas")

	pessoas, err := db.Collect(res.repo.FindAll(r.Context()))
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, pessoas)
}

func (res *PessoaResource) GetById(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseId(ps)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to get Pessoa", "id", id)

	lookup, err := res.repo.FindById(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeLookup(res.policy, w, r, lookup)
}

func (res *PessoaResource) DeleteById(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseId(ps)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to delete Pessoa", "id", id)

	if err := res.repo.DeleteById(r.Context(), id); err != nil {
		storeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
