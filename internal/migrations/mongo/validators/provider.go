package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name", "availability_status", "rating", "current_load"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"availability_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"available", "busy", "offline"},
			},
			"rating": bson.M{
				"bsonType": "number",
				"minimum":  0,
				"maximum":  5,
			},
			"service_radius_km": bson.M{
				"bsonType":         "number",
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"location": geoPoint,
			"current_load": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
