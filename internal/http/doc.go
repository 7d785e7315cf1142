// Package http exposes the option lifecycle over net/http.
//
// Every enabled kind mounts under <base>/<slug> (base defaults to /api/lookups):
//   - Create: POST /create/one, POST /create/many
//   - Read: GET /read/one/{id}, GET /read/all, GET /read/hard/all, POST /read/many
//   - Update: PUT /update/one, PUT /update/many, PUT /update/hard/one, PUT /update/hard/all
//   - Soft delete: DELETE /soft/delete/one/{id}, POST /soft/delete/many
//   - Hard delete: DELETE /hard/delete/{id}, POST /hard/delete/many, DELETE /hard/delete/all
//
// GET <base>/kinds lists the mounted kinds. Batch id payloads are {"ids": [...]}.
package http
