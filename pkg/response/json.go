package response

import "encoding/json"

// MarshalJSON encodes r in declaration form.
func (r Raw) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(r)) }

// MarshalJSON encodes t in declaration form.
func (t Templated) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(t)) }

// MarshalJSON encodes s in declaration form.
func (s Scripted) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(s)) }

// MarshalJSON encodes d by function name.
func (d Dynamic) MarshalJSON() ([]byte, error) { return json.Marshal(Encode(d)) }
