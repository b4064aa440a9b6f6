package index

// jobMapping is the index definition for job search documents. Text fields
// that also serve exact term boosts carry a keyword multi-field; posted_date
// accepts both the canonical ISO form and bare dates from older documents.
const jobMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1,
    "analysis": {
      "analyzer": {
        "default": {
          "type": "standard"
        }
      }
    }
  },
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "title": {
        "type": "text",
        "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}
      },
      "full_description": {"type": "text"},
      "summary": {"type": "text"},
      "url": {"type": "keyword", "index": false},
      "company": {
        "properties": {
          "id": {"type": "keyword"},
          "name": {
            "type": "text",
            "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}
          },
          "icon_url": {"type": "keyword", "index": false}
        }
      },
      "location": {"type": "text"},
      "locations": {
        "properties": {
          "city": {"type": "keyword"},
          "state": {"type": "keyword"},
          "country": {"type": "keyword"}
        }
      },
      "employment_type": {"type": "keyword"},
      "posted_date": {
        "type": "date",
        "format": "strict_date_optional_time||yyyy-MM-dd",
        "ignore_malformed": true
      },
      "is_remote": {"type": "boolean"},
      "expired": {"type": "boolean"},
      "skill_tags": {
        "type": "text",
        "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}
      },
      "experience_level": {"type": "keyword"},
      "salary_range": {
        "properties": {
          "min": {"type": "double"},
          "max": {"type": "double"},
          "fixed": {"type": "double"},
          "currency": {"type": "keyword"},
          "period": {"type": "keyword"}
        }
      }
    }
  }
}`
