// Package schema validates the loosely typed parameter maps that
// declarative trees pass to leaf factories.
//
// A Schema maps parameter names to types. Fields are required unless wrapped
// in Optional, and keys the schema does not declare are rejected so that
// typos in a tree file surface at load time:
//
//	params := schema.Schema{
//	    "target": schema.String(),
//	    "speed":  schema.Optional(schema.Float()),
//	    "every":  schema.Optional(schema.Duration()),
//	}
//
//	if err := schema.Validate(params, def.Params); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        ...
//	    }
//	}
package schema
