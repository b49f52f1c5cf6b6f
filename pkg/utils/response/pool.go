package response

import "sync"

// responsePool reuses Response objects to reduce allocations on hot paths.
var responsePool = sync.Pool{
	New: func() interface{} {
		return &Response{}
	},
}

// Acquire returns a Response from the pool. Callers must pass the
// response to Release after it has been serialized.
func Acquire() *Response {
	return responsePool.Get().(*Response)
}

// Release resets the response and returns it to the pool.
// The response must not be used after Release.
func Release(r *Response) {
	if r == nil {
		return
	}
	r.Code = 0
	r.HTTPCode = 0
	r.Message = ""
	r.Data = nil
	r.RequestID = ""
	r.Timestamp = 0
	responsePool.Put(r)
}
