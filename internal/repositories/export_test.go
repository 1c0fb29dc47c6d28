package repositories

var IsUniqueViolation = isUniqueViolation
