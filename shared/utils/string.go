package utils

import (
	"reflect"
	"strings"
)

// TrimAllStringFields returns a copy of input with every exported string field
// trimmed, following pointers, slices and maps.
func TrimAllStringFields[T any](input T) T {
	value := reflect.ValueOf(&input).Elem()
	trimmed := trimValue(value)
	if !trimmed.IsValid() {
		return input
	}
	return trimmed.Interface().(T)
}

func trimValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(trimValue(v.Elem()))
		return newPtr

	case reflect.Struct:
		newStruct := reflect.New(v.Type()).Elem()
		newStruct.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			newStruct.Field(i).Set(trimValue(v.Field(i)))
		}
		return newStruct

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(trimValue(v.Index(i)))
		}
		return newSlice

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		newMap := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			newMap.SetMapIndex(trimValue(iter.Key()), trimValue(iter.Value()))
		}
		return newMap

	case reflect.String:
		out := reflect.New(v.Type()).Elem()
		out.SetString(strings.TrimSpace(v.String()))
		return out

	default:
		return v
	}
}
