package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Paginated wraps a list payload with the standard pagination block.
// key names the list field, e.g. "bookings" or "slots".
func Paginated(c *gin.Context, statusCode int, key string, items any, page, limit int, total int64) {
	totalPages := 0
	if limit > 0 {
		totalPages = (int(total) + limit - 1) / limit
	}
	c.JSON(statusCode, gin.H{
		"success": true,
		"data": gin.H{
			key: items,
			"pagination": gin.H{
				"page":        page,
				"limit":       limit,
				"total":       total,
				"total_pages": totalPages,
			},
		},
	})
}
