// Package agentdirectory owns admin/agent accounts, login and bearer tokens.
//
// Layering:
// - domain: user entity, roles, account validation rules, errors
// - application: login, token authentication, agent roster commands/queries
// - ports: user repository, password hasher, token codec, phone validation
// - adapters: HTTP handler, in-memory store, postgres repository, bcrypt/jwt and phone adapters
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Password hashes never leave the repository/application boundary.
// - Other modules read agents through their own ports; they never import this module.
package agentdirectory
