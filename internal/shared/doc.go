// Package shared contains common error types used across the application.
//
// Domain packages wrap the sentinel errors so that callers can classify
// failures without importing the domain package:
//
//	var ErrDuplicateName = fmt.Errorf("%w: duplicate task name", shared.ErrConflict)
//
//	switch shared.KindOf(err) {
//	case shared.KindConflict:
//	    return http.StatusConflict
//	case shared.KindValidation:
//	    return http.StatusBadRequest
//	case shared.KindNotFound:
//	    return http.StatusNotFound
//	default:
//	    return http.StatusInternalServerError
//	}
//
// Kind priority when several sentinels are present (errors.Join):
//
//	Priority | Kind
//	---------|---------------
//	1        | KindCanceled
//	2        | KindNotFound
//	3        | KindValidation
//	4        | KindConflict
//	5        | KindInternal
package shared
