package bullhorn

// defaultFields maps known entity types to the comma-separated field
// projection requested when a caller does not name fields explicitly.
var defaultFields = map[string]string{
	"JobOrder":          "id,title,status,employmentType,dateAdded,startDate,salary,clientCorporation,owner,description,numOpenings,isOpen",
	"Candidate":         "id,firstName,lastName,email,phone,status,dateAdded,occupation,skillSet,owner",
	"Placement":         "id,candidate,jobOrder,status,dateBegin,dateEnd,salary,payRate",
	"ClientCorporation": "id,name,status,phone,address",
	"ClientContact":     "id,firstName,lastName,email,phone,clientCorporation",
}

// DefaultFields returns the default projection for entity, or fallback when
// the entity is not in the table.
func DefaultFields(entity, fallback string) string {
	if fields, ok := defaultFields[entity]; ok {
		return fields
	}
	return fallback
}

// KnownEntity reports whether entity has a documented default field set.
func KnownEntity(entity string) bool {
	_, ok := defaultFields[entity]
	return ok
}

// ClampCount normalizes a result limit into the API's accepted [1, 500]
// range. Out-of-range values are clamped rather than rejected so that
// loosely-typed tool arguments never fail on the limit.
func ClampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > 500 {
		return 500
	}
	return count
}
