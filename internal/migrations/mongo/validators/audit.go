package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"action", "resource_type", "resource_id", "created_at"},
		"properties": bson.M{
			"action":        bson.M{"bsonType": "string", "minLength": 1},
			"resource_type": bson.M{"bsonType": "string", "minLength": 1},
			"resource_id":   bson.M{"bsonType": "string", "minLength": 1},
			"metadata":      bson.M{"bsonType": "object"},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}

var LockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
