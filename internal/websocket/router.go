package websocket

import (
	"fmt"
	"reflect"
)

// Router maps RPC method names onto exported App methods via reflection,
// so the RPC surface and the Wails binding surface stay the same set of
// methods.
type Router struct {
	app     interface{}
	methods map[string]reflect.Method
}

// NewRouter indexes the exported methods of app.
func NewRouter(app interface{}) *Router {
	r := &Router{
		app:     app,
		methods: make(map[string]reflect.Method),
	}

	appType := reflect.TypeOf(app)
	for i := 0; i < appType.NumMethod(); i++ {
		method := appType.Method(i)
		if method.IsExported() {
			r.methods[method.Name] = method
		}
	}

	return r
}

// Call invokes the named method with JSON-decoded params.
func (r *Router) Call(methodName string, params []interface{}) (interface{}, error) {
	method, ok := r.methods[methodName]
	if !ok {
		return nil, fmt.Errorf("method not found: %s", methodName)
	}

	methodType := method.Type
	numIn := methodType.NumIn() - 1 // minus receiver

	if len(params) != numIn {
		return nil, fmt.Errorf("method %s expects %d params, got %d", methodName, numIn, len(params))
	}

	args := make([]reflect.Value, numIn+1)
	args[0] = reflect.ValueOf(r.app)

	for i, param := range params {
		expectedType := methodType.In(i + 1)
		paramValue, err := convertParam(param, expectedType)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		args[i+1] = paramValue
	}

	return processResults(method.Func.Call(args))
}

// convertParam coerces a JSON-decoded value to the parameter type. JSON
// numbers always decode as float64.
func convertParam(param interface{}, targetType reflect.Type) (reflect.Value, error) {
	if param == nil {
		return reflect.Zero(targetType), nil
	}

	paramValue := reflect.ValueOf(param)

	if paramValue.Type().AssignableTo(targetType) {
		return paramValue, nil
	}

	if paramValue.Kind() == reflect.Float64 {
		f := param.(float64)
		switch targetType.Kind() {
		case reflect.Int:
			return reflect.ValueOf(int(f)), nil
		case reflect.Int64:
			return reflect.ValueOf(int64(f)), nil
		case reflect.Int32:
			return reflect.ValueOf(int32(f)), nil
		case reflect.Float32:
			return reflect.ValueOf(float32(f)), nil
		}
	}

	if paramValue.Type().ConvertibleTo(targetType) {
		return paramValue.Convert(targetType), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", param, targetType)
}

// processResults folds method return values into (result, error). A
// trailing error return becomes the call error.
func processResults(results []reflect.Value) (interface{}, error) {
	errType := reflect.TypeOf((*error)(nil)).Elem()

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if results[0].Type().Implements(errType) {
			if !results[0].IsNil() {
				return nil, results[0].Interface().(error)
			}
			return nil, nil
		}
		return results[0].Interface(), nil
	case 2:
		if results[1].Type().Implements(errType) && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	default:
		var out []interface{}
		for i := 0; i < len(results)-1; i++ {
			out = append(out, results[i].Interface())
		}
		last := results[len(results)-1]
		if last.Type().Implements(errType) && !last.IsNil() {
			return nil, last.Interface().(error)
		}
		return out, nil
	}
}
