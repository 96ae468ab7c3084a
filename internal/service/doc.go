// Package service contains the application use cases: task access and
// mutation, and user administration. Each operation receives the caller's
// identity explicitly, asks the access policy whether it may proceed, and
// coordinates the stores (defined in internal/store) to carry it out.
//
// Key components:
//
// 1. TaskService:
//   - Lists tasks page by page, either every task or one owner's tasks
//   - Creates, updates, transitions and deletes single tasks
//   - Applies the status state machine inside an atomic store modification
//
// 2. UserService:
//   - Administrator-only user management
//   - Bootstraps the configured administrator at start-up
//
// 3. Error Handling:
//   - Store errors are translated into domain error kinds
//   - Every failure is wrapped in a service error naming the operation, so
//     callers can use errors.Is against the domain sentinels
//
// The service layer depends on domain entities and store interfaces, but
// never on specific infrastructure implementations.
package service
