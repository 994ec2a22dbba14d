package handler

import (
	"fmt"
	"net/http"

	"cadastro/db"

	"github.com/julienschmidt/httprouter"
)

// FilterPessoaIsNull restricts the address list to addresses without an owner.
const FilterPessoaIsNull = "pessoa-is-null"

type EnderecoResource struct {
	repo   db.Repository[db.Endereco]
	policy StatusPolicy
}

func NewEnderecoResource(repo db.Repository[db.Endereco], policy StatusPolicy) *EnderecoResource {
	return &EnderecoResource{repo: repo, policy: policy}
}

// Create answers 201 with a Location header and the stored record as body.
func (res *EnderecoResource) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var endereco db.Endereco
	if err := decode(r, &endereco); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to save Endereco", "endereco", endereco)

	if endereco.Id != nil {
		res.policy.rejectCreate(w, r)
		return
	}

	result, err := res.repo.Save(r.Context(), endereco)
	if err != nil {
		storeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/enderecos/%d", *result.Id))
	writeJSON(w, r, http.StatusCreated, result)
}

func (res *EnderecoResource) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var endereco db.Endereco
	if err := decode(r, &endereco); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to update Endereco", "endereco", endereco)

	if endereco.Id == nil {
		res.policy.rejectUpdate(w, r, http.StatusNotFound)
		return
	}

	result, err := res.repo.Save(r.Context(), endereco)
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// ListAll applies the optional filter to the records as the store yields
// them, so only matching records are materialized.
func (res *EnderecoResource) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	seq := res.repo.FindAll(r.Context())

	if r.URL.Query().Get("filter") == FilterPessoaIsNull {
		logger(r.Context()).DebugContext(r.Context(), "REST request to get all Enderecos where pessoa is null")
		seq = db.Filter(seq, db.Endereco.Unowned)
	} else {
		logger(r.Context()).DebugContext(r.Context(), "REST request to get all Enderecos")
	}

	enderecos, err := db.Collect(seq)
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, enderecos)
}

func (res *EnderecoResource) GetById(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseId(ps)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to get Endereco", "id", id)

	lookup, err := res.repo.FindById(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}

	writeLookup(res.policy, w, r, lookup)
}

func (res *EnderecoResource) DeleteById(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := parseId(ps)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	logger(r.Context()).DebugContext(r.Context(), "REST request to delete Endereco", "id", id)

	if err := res.repo.DeleteById(r.Context(), id); err != nil {
		storeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
