package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = bson.A{"int", "long"}

var geoPoint = bson.M{
	"bsonType": "object",
	"required": []string{"lat", "lng"},
	"properties": bson.M{
		"lat": bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
		"lng": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
	},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer_id",
			"service_type",
			"date",
			"time",
			"duration_hours",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			// Empty until a provider is assigned.
			"provider_id": bson.M{
				"bsonType": bson.A{"string", "null"},
			},

			"service_type": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01]\d|2[0-3]):[0-5]\d$`,
			},

			"duration_hours": bson.M{
				"bsonType": integer,
				"minimum":  1,
				"maximum":  8,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"in_progress",
					"completed",
					"cancelled",
				},
			},

			"location": geoPoint,

			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
