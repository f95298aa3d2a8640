// Package repository define los contratos de dominio del Credential Store.
//
// Los services dependen sólo de estas interfaces; las implementaciones viven en
// internal/store/pg (PostgreSQL) e internal/store/memory (proceso, tests/dev).
//
//	services/auth ──▶ repository.UserRepository ◀── store/pg | store/memory
package repository
