package domain

// domain package contains the Domain Models and Interfaces for the kickplate EDAG service.
//
// `domain/ENTITY.go` has high-level entities (Domain Model types) and functions.
// For example, `domain/edag.go` contains the graph definition (EDAG) entity.
//
// `domain/ENTITY` directory contains the "phisical" representation of the entities.
// For example, `domain/edag/k8s` builds the Kubernetes custom resource of an EDAG.
//
// # Entities
//
// - `edag`: a named graph of steps. Each step runs a container image and may depend on other steps.
// In k8s, an EDAG is a custom resource (kind EDAG), registered once and never updated by this service.
//
// - `edagrun`: one execution of an EDAG. In k8s it is a custom resource (kind EDAGRun)
// owned by its EDAG, so that deleting the EDAG removes its runs.
// The name of an EDAGRun is generated randomly and may collide; creation is retried on conflicts.
//
// - `status`: a read-only view of the workflow executing a run, reshaped for clients.
// It is never stored by this service.
